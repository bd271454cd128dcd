package common

type ContextKey string

// AuthInfoKey locates the validated JWT claims in a request context.
const AuthInfoKey ContextKey = "authInfo"
