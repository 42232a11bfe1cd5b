package capability

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Handler executes a capability. Input and output are plain strings; no
// structured objects cross this boundary. Handlers render their own failures
// as strings and never return errors.
type Handler func(ctx context.Context, input string) string

// ToolCard represents registry metadata for one capability.
type ToolCard struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Checksum    string `json:"checksum"`
	Signature   string `json:"signature"`
}

type entry struct {
	card    ToolCard
	handler Handler
}

// Registry holds validated ToolCards with their handlers, keyed by name.
type Registry struct {
	tools map[string]entry
}

// ErrToolMissing indicates a required capability is not registered.
var ErrToolMissing = fmt.Errorf("required capability missing")

// ErrUnknownTool indicates an invocation named an unregistered capability.
var ErrUnknownTool = fmt.Errorf("unknown capability")

// Card pairs a ToolCard with its handler for registration.
type Card struct {
	ToolCard
	Handler Handler
}

// NewRegistry validates cards and ensures required capabilities exist.
// When two cards share a name, the highest version wins.
func NewRegistry(cards []Card, signingSecret string, required []string) (*Registry, error) {
	reg := &Registry{tools: make(map[string]entry)}
	for _, c := range cards {
		if err := ValidateToolCard(c.ToolCard); err != nil {
			return nil, fmt.Errorf("tool %s@%s invalid: %w", c.Name, c.Version, err)
		}
		if err := validateSignature(c.ToolCard, signingSecret); err != nil {
			return nil, fmt.Errorf("tool %s@%s signature invalid: %w", c.Name, c.Version, err)
		}
		existing, ok := reg.tools[c.Name]
		if !ok || versionGreater(c.Version, existing.card.Version) {
			reg.tools[c.Name] = entry{card: c.ToolCard, handler: c.Handler}
		}
	}
	for _, r := range required {
		if _, ok := reg.tools[r]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrToolMissing, r)
		}
	}
	return reg, nil
}

// Tool returns the ToolCard for a capability name.
func (r *Registry) Tool(name string) (ToolCard, bool) {
	if r == nil {
		return ToolCard{}, false
	}
	e, ok := r.tools[name]
	return e.card, ok
}

// Names lists registered capability names.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}

// Describe renders a one-line-per-capability listing for prompt embedding.
func (r *Registry) Describe() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range r.tools {
		fmt.Fprintf(&b, "- %s: %s\n", e.card.Name, e.card.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Invoke runs the named capability's handler.
func (r *Registry) Invoke(ctx context.Context, name, input string) (string, error) {
	if r == nil {
		return "", ErrUnknownTool
	}
	e, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return e.handler(ctx, input), nil
}

// ValidateToolCard checks the card carries the required metadata.
func ValidateToolCard(tc ToolCard) error {
	if strings.TrimSpace(tc.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(tc.Version) == "" {
		return fmt.Errorf("version is required")
	}
	return nil
}

// ComputeChecksum returns a deterministic hash of the ToolCard payload
// (excluding checksum and signature fields).
func ComputeChecksum(tc ToolCard) (string, error) {
	payload := map[string]interface{}{
		"name":        tc.Name,
		"version":     tc.Version,
		"description": tc.Description,
	}
	normalized, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(normalized)
	return hex.EncodeToString(sum[:]), nil
}

// SignToolCard computes an HMAC signature using the signing secret.
func SignToolCard(tc ToolCard, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret is empty")
	}
	checksum, err := ComputeChecksum(tc)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(checksum))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func validateSignature(tc ToolCard, secret string) error {
	if secret == "" {
		return nil
	}
	expected, err := SignToolCard(tc, secret)
	if err != nil {
		return err
	}
	if !hmac.Equal([]byte(expected), []byte(tc.Signature)) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

func versionGreater(a, b string) bool {
	if a == b {
		return false
	}
	// naive semver compare
	return intsCompare(splitVersion(a), splitVersion(b)) > 0
}

func splitVersion(v string) []int {
	parts := strings.Split(strings.TrimPrefix(v, "v"), ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		fmt.Sscanf(p, "%d", &out[i])
	}
	return out
}

func intsCompare(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		ai, bi := 0, 0
		if i < len(a) {
			ai = a[i]
		}
		if i < len(b) {
			bi = b[i]
		}
		if ai > bi {
			return 1
		}
		if ai < bi {
			return -1
		}
	}
	return 0
}
