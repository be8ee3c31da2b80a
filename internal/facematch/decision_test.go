package facematch

import "testing"

func partnerMatch(photoID, partnerID string) PartnerMatch {
	return PartnerMatch{
		FaceMatch:   FaceMatch{PhotoID: photoID, PartnerID: partnerID, Similarity: 0.95, Confidence: 95},
		PartnerName: "Partner " + partnerID,
	}
}

func TestDecidePrecedence(t *testing.T) {
	ownMatch := FaceMatch{PhotoID: "own1", PartnerID: "a", Similarity: 0.97, Confidence: 97}
	otherMatch := partnerMatch("other1", "b")

	tests := []struct {
		name                    string
		partnerMatches          []FaceMatch
		otherPartnerMatches     []PartnerMatch
		partnerHasOtherPhotos   bool
		otherPartnersHavePhotos bool
		expected                DecisionType
	}{
		// Other-partner evidence always wins.
		{"other matches only", nil, []PartnerMatch{otherMatch}, false, true, DecisionWarnOtherPartners},
		{"other matches with own matches", []FaceMatch{ownMatch}, []PartnerMatch{otherMatch}, true, true, DecisionWarnOtherPartners},
		{"other matches without partner photos", nil, []PartnerMatch{otherMatch}, false, false, DecisionWarnOtherPartners},

		// Same-person warning needs existing photos and zero own matches.
		{"existing photos no matches", nil, nil, true, false, DecisionWarnSamePerson},
		{"existing photos no matches others have photos", nil, nil, true, true, DecisionWarnSamePerson},

		// Everything else proceeds.
		{"first photo", nil, nil, false, false, DecisionProceed},
		{"first photo others have photos", nil, nil, false, true, DecisionProceed},
		{"matches own photos", []FaceMatch{ownMatch}, nil, true, false, DecisionProceed},
		{"matches own photos no history flag", []FaceMatch{ownMatch}, nil, false, false, DecisionProceed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.partnerMatches, tt.otherPartnerMatches, tt.partnerHasOtherPhotos, tt.otherPartnersHavePhotos)
			if d.Type != tt.expected {
				t.Errorf("Decide() = %s, want %s", d.Type, tt.expected)
			}
		})
	}
}

func TestDecideCarriesOtherPartnerEvidence(t *testing.T) {
	evidence := []PartnerMatch{
		partnerMatch("other1", "b"),
		partnerMatch("other2", "c"),
	}

	d := Decide(nil, evidence, true, true)
	if d.Type != DecisionWarnOtherPartners {
		t.Fatalf("expected warn_other_partners, got %s", d.Type)
	}
	if len(d.OtherPartnerMatches) != 2 {
		t.Fatalf("expected 2 evidence matches, got %d", len(d.OtherPartnerMatches))
	}
	if d.OtherPartnerMatches[0].PhotoID != "other1" || d.OtherPartnerMatches[1].PhotoID != "other2" {
		t.Errorf("evidence list altered: %+v", d.OtherPartnerMatches)
	}
	if len(d.PartnerMatches) != 0 {
		t.Errorf("warn_other_partners should not carry partner matches, got %+v", d.PartnerMatches)
	}
}

func TestDecideProceedCarriesPartnerMatches(t *testing.T) {
	own := []FaceMatch{
		{PhotoID: "own1", PartnerID: "a", Similarity: 0.99, Confidence: 99},
		{PhotoID: "own2", PartnerID: "a", Similarity: 0.92, Confidence: 92},
	}

	d := Decide(own, nil, true, false)
	if d.Type != DecisionProceed {
		t.Fatalf("expected proceed, got %s", d.Type)
	}
	if len(d.PartnerMatches) != 2 {
		t.Errorf("expected partner matches carried through, got %+v", d.PartnerMatches)
	}
	if len(d.OtherPartnerMatches) != 0 {
		t.Errorf("proceed should not carry other-partner matches, got %+v", d.OtherPartnerMatches)
	}
}

func TestDecideWarnSamePersonCarriesNoMatches(t *testing.T) {
	d := Decide(nil, nil, true, false)
	if d.Type != DecisionWarnSamePerson {
		t.Fatalf("expected warn_same_person, got %s", d.Type)
	}
	if len(d.PartnerMatches) != 0 || len(d.OtherPartnerMatches) != 0 {
		t.Errorf("warn_same_person should carry no matches: %+v", d)
	}
}

func TestDecideUnassigned(t *testing.T) {
	t.Run("no matches creates new partner", func(t *testing.T) {
		d := DecideUnassigned(nil)
		if d.Type != DecisionCreateNew {
			t.Errorf("expected create_new, got %s", d.Type)
		}
	})

	t.Run("matches surface existing partners", func(t *testing.T) {
		matches := []PartnerMatch{partnerMatch("p1", "a"), partnerMatch("p2", "b")}
		d := DecideUnassigned(matches)
		if d.Type != DecisionWarnOtherPartners {
			t.Errorf("expected warn_other_partners, got %s", d.Type)
		}
		if len(d.OtherPartnerMatches) != 2 {
			t.Errorf("expected both matches surfaced, got %+v", d.OtherPartnerMatches)
		}
	})

	t.Run("never warns same person", func(t *testing.T) {
		// Whatever the input, the unassigned flow has no partner to
		// compare against so warn_same_person must be unreachable.
		for _, matches := range [][]PartnerMatch{nil, {partnerMatch("p1", "a")}} {
			if d := DecideUnassigned(matches); d.Type == DecisionWarnSamePerson {
				t.Errorf("warn_same_person reached with matches %+v", matches)
			}
		}
	})
}

// Scenario coverage for the end-to-end upload flows.
func TestUploadScenarios(t *testing.T) {
	m := NewMatcher(90)
	partnerDescriptor := FaceDescriptor{0.5, 0.5}
	strangerDescriptor := FaceDescriptor{-0.5, -0.5}

	t.Run("first photo of a new partner", func(t *testing.T) {
		matches, _, err := m.FindMatches(partnerDescriptor, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d := Decide(matches, nil, false, false)
		if d.Type != DecisionProceed {
			t.Errorf("expected proceed, got %s", d.Type)
		}
	})

	t.Run("second photo matching the first", func(t *testing.T) {
		own := []PhotoRecord{{ID: "p1", PartnerID: "a", Descriptor: partnerDescriptor}}
		matches, _, err := m.FindMatches(partnerDescriptor, own)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d := Decide(matches, nil, true, false)
		if d.Type != DecisionProceed {
			t.Errorf("expected proceed, got %s", d.Type)
		}
		if len(d.PartnerMatches) != 1 {
			t.Errorf("expected matching photo carried along, got %+v", d.PartnerMatches)
		}
	})

	t.Run("photo of a different person for the same partner", func(t *testing.T) {
		own := []PhotoRecord{{ID: "p1", PartnerID: "a", Descriptor: partnerDescriptor}}
		matches, _, err := m.FindMatches(strangerDescriptor, own)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d := Decide(matches, nil, true, false)
		if d.Type != DecisionWarnSamePerson {
			t.Errorf("expected warn_same_person, got %s", d.Type)
		}
	})

	t.Run("photo resembling another partner", func(t *testing.T) {
		others := []PhotoRecord{{ID: "p2", PartnerID: "b", PartnerName: "Bea", Descriptor: partnerDescriptor}}
		matches, _, err := m.FindMatches(partnerDescriptor, others)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d := Decide(nil, EnrichMatches(matches, others), false, true)
		if d.Type != DecisionWarnOtherPartners {
			t.Fatalf("expected warn_other_partners, got %s", d.Type)
		}
		if d.OtherPartnerMatches[0].PartnerName != "Bea" {
			t.Errorf("expected enriched evidence, got %+v", d.OtherPartnerMatches[0])
		}
	})

	t.Run("unassigned photo of an unknown face", func(t *testing.T) {
		others := []PhotoRecord{{ID: "p2", PartnerID: "b", Descriptor: partnerDescriptor}}
		matches, _, err := m.FindMatches(strangerDescriptor, others)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		d := DecideUnassigned(EnrichMatches(matches, others))
		if d.Type != DecisionCreateNew {
			t.Errorf("expected create_new, got %s", d.Type)
		}
	})
}
