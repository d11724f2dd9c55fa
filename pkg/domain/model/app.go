package model

// AppIdentity is the authenticated GitHub App as returned by GET /app
type AppIdentity struct {
	ID    int64
	Slug  string
	Name  string
	Owner string
}
