package services

import (
	"github.com/dmitrijs2005/lawdesk/internal/common"
)

// Category is one legal subject area shared by consultations, templates
// and the chatbot.
type Category struct {
	Key   string
	Label string
}

// Categories lists the subject areas in display order.
var Categories = []Category{
	{"administration", "Administration"},
	{"bankruptcy", "Rehabilitation, bankruptcy and discharge"},
	{"civil execution", "Civil execution"},
	{"civil general", "Civil general"},
	{"civil suit", "Civil suit"},
	{"commercial", "Commercial"},
	{"commercial building lease", "Commercial building lease"},
	{"constitution", "Constitution"},
	{"contract", "Contract"},
	{"criminal law", "Criminal law"},
	{"criminal suit", "Criminal suit"},
	{"damage", "Damages"},
	{"domestic relation", "Domestic relations"},
	{"etc", "Other"},
	{"family lawsuit", "Family lawsuit"},
	{"family relation registration", "Family relation registration"},
	{"housing lease", "Housing lease"},
	{"labor", "Labor"},
	{"obligation", "Obligations"},
	{"preservative measure", "Preservative measures"},
	{"real right", "Real rights"},
	{"succession", "Succession"},
}

func categoryLabel(key string) (string, bool) {
	for _, c := range Categories {
		if c.Key == key {
			return c.Label, true
		}
	}
	return "", false
}

func checkCategory(key string) error {
	if _, ok := categoryLabel(key); !ok {
		return invalid("Category", common.MessageUnknownCategory)
	}
	return nil
}
