package jwtx

// Signer produces signed tokens from claims.
type Signer interface {
	Sign(claims Claims) (string, error)
}

// Verifier checks a compact token and returns its claims.
type Verifier interface {
	Verify(raw string) (Claims, error)
}

var (
	_ Signer   = (*HS256)(nil)
	_ Verifier = (*HS256)(nil)
)
