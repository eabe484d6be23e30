package services

import (
	"regexp"
	"sort"
	"strings"
)

// Template is one downloadable legal document template.
type Template struct {
	Category string
	File     string
	Title    string
}

// templateFiles is the bundled template catalog by category.
var templateFiles = map[string][]string{
	"civil suit": {
		"01-complaint for loan repayment.hwp",
		"02-answer to complaint.hwp",
		"03-application for payment order.hwp",
	},
	"civil execution": {
		"01-application for compulsory auction.hwp",
		"02-seizure and collection order.hwp",
	},
	"housing lease": {
		"01-housing lease agreement.hwp",
		"02-request for return of deposit.hwp",
		"03-application for lease registration order.hwp",
	},
	"commercial building lease": {
		"01-commercial lease agreement.hwp",
		"02-notice of contract renewal.hwp",
	},
	"contract": {
		"01-sales contract.hwp",
		"02-service agreement.hwp",
		"03-notice of contract termination.hwp",
	},
	"criminal suit": {
		"01-criminal complaint.hwp",
		"02-petition for leniency.hwp",
	},
	"damage": {
		"01-claim for damages.hwp",
		"02-settlement agreement.hwp",
	},
	"family lawsuit": {
		"01-divorce petition.hwp",
		"02-child custody petition.hwp",
	},
	"labor": {
		"01-employment contract.hwp",
		"02-wage claim petition.hwp",
	},
	"succession": {
		"01-renunciation of inheritance.hwp",
		"02-limited acceptance of inheritance.hwp",
	},
	"bankruptcy": {
		"01-application for individual rehabilitation.hwp",
		"02-bankruptcy and discharge petition.hwp",
	},
}

var leadingNumber = regexp.MustCompile(`^\d+[-\s]*`)

// templateTitle strips the ordering prefix and the extension.
func templateTitle(file string) string {
	title := leadingNumber.ReplaceAllString(file, "")
	if i := strings.LastIndexByte(title, '.'); i > 0 {
		title = title[:i]
	}
	return title
}

// Templates lists templates of category, or of every category when
// category is "" or "all". Results are ordered by category then file.
func Templates(category string) ([]Template, error) {
	var keys []string
	switch category {
	case "", "all":
		for k := range templateFiles {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	default:
		if err := checkCategory(category); err != nil {
			return nil, err
		}
		keys = []string{category}
	}

	var out []Template
	for _, k := range keys {
		for _, f := range templateFiles[k] {
			out = append(out, Template{Category: k, File: f, Title: templateTitle(f)})
		}
	}
	return out, nil
}
