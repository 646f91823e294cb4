package secrets

import "os"

// Env is a source of secret values.
type Env interface {
	Lookup(name string) (string, bool)
}

// EnvFunc adapts a lookup function to Env.
type EnvFunc func(name string) (string, bool)

func (f EnvFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// OS reads secrets from the process environment.
func OS() Env {
	return EnvFunc(os.LookupEnv)
}

// Static is a fixed set of secrets, mostly useful in tests.
type Static map[string]string

func (s Static) Lookup(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}
