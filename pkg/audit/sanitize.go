package audit

// sensitiveKeys are redacted from captured payloads. The set is fixed so
// audit diffs stay deterministic across deployments.
var sensitiveKeys = map[string]struct{}{
	"password":   {},
	"token":      {},
	"secret":     {},
	"apiKey":     {},
	"creditCard": {},
}

// Redacted replaces sensitive values in sanitized payloads.
const Redacted = "[REDACTED]"

// Sanitize returns a copy of payload with the value of every sensitive key
// replaced by Redacted. Nested maps are sanitized recursively; the input is
// never modified. A nil payload yields nil.
func Sanitize(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}

	out := make(map[string]any, len(payload))
	for key, value := range payload {
		if _, sensitive := sensitiveKeys[key]; sensitive {
			out[key] = Redacted
			continue
		}
		if nested, ok := value.(map[string]any); ok {
			out[key] = Sanitize(nested)
			continue
		}
		out[key] = value
	}
	return out
}
