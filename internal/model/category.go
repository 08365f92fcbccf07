package model

type Category string

const (
	CategoryTransfer      Category = "transfer"
	CategoryShopping      Category = "shopping"
	CategoryEntertainment Category = "entertainment"
	CategoryTransport     Category = "transport"
	CategoryUtilities     Category = "utilities"
	CategoryDining        Category = "dining"
	CategoryEducation     Category = "education"
	CategorySports        Category = "sports"
	CategoryTravel        Category = "travel"
	CategoryPets          Category = "pets"
	CategoryMedical       Category = "medical"
	CategoryInsurance     Category = "insurance"
	CategoryCharity       Category = "charity"
	CategoryGift          Category = "gift"
	CategoryFamily        Category = "family"
	CategoryHotel         Category = "hotel"
	CategoryOther         Category = "other"
)

// Categories is the closed catalog, in display order. Derived views
// report every entry, including zero-valued ones.
var Categories = []Category{
	CategoryTransfer,
	CategoryShopping,
	CategoryEntertainment,
	CategoryTransport,
	CategoryUtilities,
	CategoryDining,
	CategoryEducation,
	CategorySports,
	CategoryTravel,
	CategoryPets,
	CategoryMedical,
	CategoryInsurance,
	CategoryCharity,
	CategoryGift,
	CategoryFamily,
	CategoryHotel,
	CategoryOther,
}

// CategoryIcons maps each category to its display icon name. Irrelevant
// to sync logic, used by the terminal views only.
var CategoryIcons = map[Category]string{
	CategoryTransfer:      "swap-horizontal",
	CategoryShopping:      "cart",
	CategoryEntertainment: "gamepad-variant",
	CategoryTransport:     "bus",
	CategoryUtilities:     "flash",
	CategoryDining:        "silverware-fork-knife",
	CategoryEducation:     "school",
	CategorySports:        "basketball",
	CategoryTravel:        "wallet-travel",
	CategoryPets:          "paw",
	CategoryMedical:       "medical-bag",
	CategoryInsurance:     "account-lock",
	CategoryCharity:       "hand-heart",
	CategoryGift:          "wallet-giftcard",
	CategoryFamily:        "account-group",
	CategoryHotel:         "bed-empty",
	CategoryOther:         "dots-horizontal",
}

func (c Category) Valid() bool {
	_, ok := CategoryIcons[c]
	return ok
}
