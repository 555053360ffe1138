// Package batch decodes operator batches of technicians and jobs from YAML
// or JSON. Records keep optional fields as pointers so that a missing value
// can be told apart from a zero value.
package batch
