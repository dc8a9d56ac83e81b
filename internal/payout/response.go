package payout

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	failureMarkers = []string{"error", "failed", "failure", "unsuccessful", "insufficient"}
	hexTxHash      = regexp.MustCompile(`0x[0-9a-fA-F]{64}`)
	labelledHash   = regexp.MustCompile(`(?i)(?:signature|tx\s*hash|transaction\s*hash|txid|tx)\s*[:=]?\s*([1-9A-HJ-NP-Za-km-z]{32,}|0x[0-9a-fA-F]{64})`)
)

// ParseResponse interprets the execution agent's reply. JSON objects are read
// by their error, success and txHash/signature fields. Free text is a
// failure when it carries an error marker and a success only when it carries
// a success marker or a transaction hash. The returned string is the
// transaction hash when one could be found.
func ParseResponse(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", fmt.Errorf("empty response")
	}

	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			return parseObject(obj)
		}
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range failureMarkers {
		if strings.Contains(lower, marker) {
			return "", fmt.Errorf("execution reported failure: %s", truncate(trimmed))
		}
	}

	hash := findHash(trimmed)
	if hash != "" || strings.Contains(lower, "success") {
		return hash, nil
	}
	return "", fmt.Errorf("unrecognized execution response: %s", truncate(trimmed))
}

func parseObject(obj map[string]interface{}) (string, error) {
	if e, ok := obj["error"]; ok && e != nil && e != false && e != "" {
		return "", fmt.Errorf("execution reported failure: %v", e)
	}

	var hash string
	for _, key := range []string{"txHash", "tx_hash", "signature", "hash"} {
		if v, ok := obj[key].(string); ok && v != "" {
			hash = v
			break
		}
	}

	if success, ok := obj["success"].(bool); ok {
		if !success {
			return "", fmt.Errorf("execution reported success=false")
		}
		return hash, nil
	}
	if hash != "" {
		return hash, nil
	}
	if nested, ok := obj["response"].(string); ok {
		return ParseResponse(nested)
	}
	return "", fmt.Errorf("execution response carries no result")
}

func findHash(text string) string {
	if m := labelledHash.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return hexTxHash.FindString(text)
}

func truncate(s string) string {
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
