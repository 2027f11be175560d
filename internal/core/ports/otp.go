package ports

// CodeGenerator produces verification codes from a cryptographically
// secure random source. Outputs are six zero-padded digits and must not
// be predictable from prior outputs.
type CodeGenerator interface {
	Generate() (string, error)
}

// CodeHasher one-way hashes codes for storage. Verify must not leak the
// position of a mismatch through timing.
type CodeHasher interface {
	Hash(code string) (string, error)
	Verify(code, hash string) bool
}
