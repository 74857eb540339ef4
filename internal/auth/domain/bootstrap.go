package domain

// BootstrapData describes the operator account seeded into an empty store.
type BootstrapData struct {
	Email    string
	Password string
}
