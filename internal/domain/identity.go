package domain

// ExternalIdentity is a person asserted by a third-party identity provider.
type ExternalIdentity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
	Picture  string
}
