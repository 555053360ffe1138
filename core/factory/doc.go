// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[notify.Notifier]()
//	reg.Register("redis", func(conf map[string]any) (notify.Notifier, error) {
//	    var c redis.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return redis.NewNotifier(c, nil)
//	})
//	n, err := reg.Create(factory.ModuleConfig{Type: "redis", Conf: map[string]any{"addr": "localhost:6379"}})
package factory
