package facematch

// UploadDecision is the outcome of checking a photo before it is stored.
// Exactly one of the match lists is populated depending on the decision type.
type UploadDecision struct {
	Type                DecisionType   `json:"type"`
	OtherPartnerMatches []PartnerMatch `json:"other_partner_matches,omitempty"`
	PartnerMatches      []FaceMatch    `json:"partner_matches,omitempty"`
}

// Decide applies the upload warning rules for a photo checked against a
// chosen partner. Rules are evaluated in order and the first that applies
// wins:
//
//  1. The face matched photos of other partners: warn, carrying exactly
//     those matches as evidence.
//  2. The partner already has photos but none of them matched: warn that
//     the photo may not show the same person.
//  3. Otherwise proceed; matches against the partner's own photos are
//     carried along informationally.
//
// otherPartnersHavePhotos is part of the call contract for symmetry with
// partnerHasOtherPhotos but does not influence any current rule.
func Decide(
	partnerMatches []FaceMatch,
	otherPartnerMatches []PartnerMatch,
	partnerHasOtherPhotos bool,
	otherPartnersHavePhotos bool,
) UploadDecision {
	if len(otherPartnerMatches) > 0 {
		return UploadDecision{
			Type:                DecisionWarnOtherPartners,
			OtherPartnerMatches: otherPartnerMatches,
		}
	}

	if partnerHasOtherPhotos && len(partnerMatches) == 0 {
		return UploadDecision{Type: DecisionWarnSamePerson}
	}

	return UploadDecision{
		Type:           DecisionProceed,
		PartnerMatches: partnerMatches,
	}
}

// DecideUnassigned handles the flow where no partner was selected yet.
// The same rule table applies with all matches treated as other-partner
// evidence; a clean result becomes create_new instead of proceed. There is
// no same-person warning because there is no partner to compare against.
func DecideUnassigned(matches []PartnerMatch) UploadDecision {
	d := Decide(nil, matches, false, len(matches) > 0)
	if d.Type == DecisionProceed {
		d.Type = DecisionCreateNew
	}
	return d
}
