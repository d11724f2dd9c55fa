package model

// PullRequestInfo holds the fields of a pull_request event needed to greet it
type PullRequestInfo struct {
	InstallationID int64
	Owner          string
	Repo           string
	Number         int
	Title          string
	Author         string
}

// CommentRequest is a single "create issue comment" call, derived 1:1 from a
// pull_request.opened event
type CommentRequest struct {
	Owner       string
	Repo        string
	IssueNumber int
	Body        string
}
