package memocache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// KeyParams describes the inputs a direct-mode cache key is derived from.
// Keys built from equal params are equal regardless of argument order,
// label order, case, or surrounding whitespace.
type KeyParams struct {
	// Operation identifies what is being computed. Required.
	Operation string

	// Scope qualifies the operation, such as a tenant or data source.
	Scope string

	// Args are the operation inputs, treated as an unordered set.
	Args []string

	// Labels are named qualifiers, hashed in sorted name order.
	Labels map[string]string
}

// GenerateKey derives a deterministic key from params: a 64-character hex
// SHA-256 digest of their canonical form.
func GenerateKey(params KeyParams) (string, error) {
	op := normalizeKeyPart(params.Operation)
	if op == "" {
		return "", ErrMissingOperation
	}

	args := make([]string, 0, len(params.Args))
	for _, a := range params.Args {
		args = append(args, normalizeKeyPart(a))
	}
	sort.Strings(args)

	labels := make([]string, 0, len(params.Labels))
	for name, value := range params.Labels {
		labels = append(labels, normalizeKeyPart(name)+"="+normalizeKeyPart(value))
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("op=")
	b.WriteString(op)
	b.WriteString("|scope=")
	b.WriteString(normalizeKeyPart(params.Scope))
	b.WriteString("|args=")
	b.WriteString(strings.Join(args, ","))
	b.WriteString("|labels=")
	b.WriteString(strings.Join(labels, ","))

	return HashKey(b.String()), nil
}

// GenerateSimpleKey joins the non-empty parts into a readable colon-separated
// key. Useful when the inputs are already short and well-formed.
func GenerateSimpleKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := normalizeKeyPart(p); n != "" {
			kept = append(kept, n)
		}
	}
	return strings.Join(kept, ":")
}

// HashKey returns the 64-character hex SHA-256 digest of s, for callers that
// already carry a canonical representation such as a query string.
func HashKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// KeyBuilder assembles KeyParams fluently.
type KeyBuilder struct {
	params KeyParams
}

// NewKeyBuilder starts a builder for the given operation and scope.
func NewKeyBuilder(operation, scope string) *KeyBuilder {
	return &KeyBuilder{params: KeyParams{Operation: operation, Scope: scope}}
}

// WithArgs appends operation inputs.
func (b *KeyBuilder) WithArgs(args ...string) *KeyBuilder {
	b.params.Args = append(b.params.Args, args...)
	return b
}

// WithLabel adds one named qualifier, overwriting a previous value.
func (b *KeyBuilder) WithLabel(name, value string) *KeyBuilder {
	if b.params.Labels == nil {
		b.params.Labels = make(map[string]string)
	}
	b.params.Labels[name] = value
	return b
}

// Params returns the accumulated params.
func (b *KeyBuilder) Params() KeyParams {
	return b.params
}

// Build derives the key from the accumulated params.
func (b *KeyBuilder) Build() (string, error) {
	return GenerateKey(b.params)
}
