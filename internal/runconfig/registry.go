package runconfig

// Registry holds the known run configurations in definition order. When two
// configurations share a name, the first definition wins.
type Registry struct {
	configs []Configuration
	byName  map[string]int
}

// NewRegistry creates a Registry from configurations
func NewRegistry(configs ...Configuration) *Registry {
	r := &Registry{byName: make(map[string]int)}
	for _, c := range configs {
		r.Add(c)
	}
	return r
}

// Add registers c unless a configuration with the same name exists. It
// reports whether c was added.
func (r *Registry) Add(c Configuration) bool {
	if _, ok := r.byName[c.Name]; ok {
		return false
	}
	r.byName[c.Name] = len(r.configs)
	r.configs = append(r.configs, c)
	return true
}

// Find returns the configuration named name
func (r *Registry) Find(name string) (*Configuration, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return &r.configs[i], true
}

// Names returns every configuration name in definition order
func (r *Registry) Names() []string {
	names := make([]string, len(r.configs))
	for i, c := range r.configs {
		names[i] = c.Name
	}
	return names
}

// Len returns the number of registered configurations
func (r *Registry) Len() int {
	return len(r.configs)
}
