package constants

// Context keys
const (
	ContextPrincipal    = "principal"
	ContextSessionToken = "sessionToken"
)

// Cookies
const (
	SessionCookieName = "catalog_session"
	StateCookieName   = "catalog_state"
)

// Error messages
const (
	ErrCategoryNotFound = "Category not found"
	ErrItemNotFound     = "Item not found"
	ErrUnexpected       = "Unexpected error"
	ErrInvalidInput     = "Invalid input"
	ErrLoginRequired    = "You must login first"
	ErrNoAccess         = "You don't have access to that"
	ErrItemNoAccess     = "You don't have access to this item"
	ErrInvalidState     = "Invalid state parameter"
	ErrExchangeFailed   = "Failed to upgrade the authorization code"
	ErrTokenMismatch    = "Token does not match the expected user or client"
	ErrInvalidLogin     = "Invalid email or password"
)
