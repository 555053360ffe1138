package notify

import "github.com/kilianp07/techdispatch/core/factory"

var registry = factory.NewRegistry[Notifier]()

// Register adds a notifier factory identified by name.
func Register(name string, f factory.Factory[Notifier]) error {
	return registry.Register(name, f)
}

// Types lists the registered notifier names.
func Types() []string { return registry.Names() }

// New builds the notifiers described by cfgs. No configuration yields a
// NopNotifier.
func New(cfgs []factory.ModuleConfig) (Notifier, error) {
	switch len(cfgs) {
	case 0:
		return NopNotifier{}, nil
	case 1:
		return registry.Create(cfgs[0])
	}
	ns := make([]Notifier, 0, len(cfgs))
	for _, c := range cfgs {
		n, err := registry.Create(c)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return NewMultiNotifier(ns...), nil
}

func init() {
	_ = Register("none", func(map[string]any) (Notifier, error) { return NopNotifier{}, nil })
}
