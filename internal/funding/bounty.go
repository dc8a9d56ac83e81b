package funding

import (
	"strings"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/shopspring/decimal"
)

// ParseBounty extracts the numeric amount from a free-text currency string by
// dropping every character that is not a digit or a dot and reading the
// longest leading number: "$1,250.50 USDC" parses to 1250.50 and
// "1,000.00 tokens." to 1000.
func ParseBounty(campaignID, bounty string) (decimal.Decimal, error) {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, bounty)

	number := leadingNumber(cleaned)
	if number == "" || number == "." {
		return decimal.Zero, &errors.InvalidConfigurationError{CampaignID: campaignID, Reason: "invalid bounty " + quote(bounty)}
	}
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}
	amount, err := decimal.NewFromString(strings.TrimSuffix(number, "."))
	if err != nil {
		return decimal.Zero, &errors.InvalidConfigurationError{CampaignID: campaignID, Reason: "invalid bounty " + quote(bounty), Err: err}
	}
	return amount, nil
}

// leadingNumber returns the prefix of s made of digits and at most one dot.
func leadingNumber(s string) string {
	dot := false
	for i, r := range s {
		if r == '.' {
			if dot {
				return s[:i]
			}
			dot = true
		}
	}
	return s
}

func quote(s string) string {
	return "\"" + s + "\""
}
