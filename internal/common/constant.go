package common

// AccessTokenCookieName is the cookie that carries the access token for
// browser clients.
const AccessTokenCookieName = "oa_access"

// AuthorizationHeaderName carries "Bearer <token>" for non-browser clients.
const AuthorizationHeaderName = "Authorization"
