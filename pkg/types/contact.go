package types

// Contact holds the prefill fields handed to the hosted payment page.
// Phone must be E.164 (+14155550100); it is passed to Square verbatim.
type Contact struct {
	Email      string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,e164"`
	GivenName  string `json:"givenName,omitempty"`
	FamilyName string `json:"familyName,omitempty"`
}
