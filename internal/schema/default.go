package schema

import "github.com/steveyegge/boardsync/internal/types"

// Default returns the production board (Product project #9).
func Default() *Schema {
	return &Schema{
		ProjectID:     "PVT_kwDOB3GKus4Aijmy",
		ProjectNumber: 9,
		Fields: map[types.Field]FieldDef{
			types.FieldStatus:        {ID: "PVTSSF_lADOB3GKus4AijmyzgbDmFs", Name: "Status"},
			types.FieldWorkflowPhase: {ID: "PVTSSF_lADOB3GKus4Aijmyzg5QP-s", Name: "Workflow Phase"},
			types.FieldNSM:           {ID: "PVTSSF_lADOB3GKus4Aijmyzg4OqYo", Name: "NSM"},
			types.FieldOKR:           {ID: "PVTSSF_lADOB3GKus4Aijmyzg4OsCs", Name: "OKR"},
			types.FieldSquad:         {ID: "PVTSSF_lADOB3GKus4AijmyzgfJCPA", Name: "Squad"},
			types.FieldReach:         {ID: "PVTF_lADOB3GKus4Aijmyzg4iSz0", Name: "Reach"},
			types.FieldImpact:        {ID: "PVTSSF_lADOB3GKus4Aijmyzg5VdFo", Name: "Impact"},
			types.FieldConfidence:    {ID: "PVTSSF_lADOB3GKus4Aijmyzg5VebI", Name: "Confidence"},
			types.FieldSize:          {ID: "PVTSSF_lADOB3GKus4AijmyzgbDm2I", Name: "Size"},
			types.FieldRICE:          {ID: "PVTF_lADOB3GKus4Aijmyzg4iTEQ", Name: "RICE"},
			types.FieldPriority:      {ID: "PVTSSF_lADOB3GKus4AijmyzgbDm2E", Name: "Priority"},
		},
		Impact: Vocabulary{
			{Token: "impact-minimal", OptionID: "0eb273fb", Name: "Minimal", Value: 0.25},
			{Token: "impact-low", OptionID: "fd428338", Name: "Low", Value: 0.5},
			{Token: "impact-medium", OptionID: "e4581220", Name: "Medium", Value: 1},
			{Token: "impact-high", OptionID: "88a8e63c", Name: "High", Value: 2},
			{Token: "impact-massive", OptionID: "20141f24", Name: "Massive", Value: 3},
		},
		Confidence: Vocabulary{
			{Token: "confidence-20", OptionID: "284ef748", Name: "20%", Value: 0.2},
			{Token: "confidence-40", OptionID: "f26350a8", Name: "40%", Value: 0.4},
			{Token: "confidence-60", OptionID: "665274c5", Name: "60%", Value: 0.6},
			{Token: "confidence-80", OptionID: "2fa27cea", Name: "80%", Value: 0.8},
			{Token: "confidence-100", OptionID: "46f07b90", Name: "100%", Value: 1.0},
		},
		Size: Vocabulary{
			{Token: "effort-xxtiny", OptionID: "405714de", Name: "🐣 XX-Tiny", Value: 0},
			{Token: "effort-xtiny", OptionID: "f568e1b9", Name: "🦋 X-Tiny", Value: 0.5},
			{Token: "effort-tiny", OptionID: "41b8be95", Name: "🦔 Tiny", Value: 1},
			{Token: "effort-small", OptionID: "bd920d78", Name: "🐇 Small", Value: 2},
			{Token: "effort-medium", OptionID: "af69dd27", Name: "🦑 Medium", Value: 3},
			{Token: "effort-large", OptionID: "2a3ab5d1", Name: "🐂 Large", Value: 5},
			{Token: "effort-xlarge", OptionID: "aba93493", Name: "🐋 X-Large", Value: 8},
			{Token: "effort-xxlarge", OptionID: "e65634c9", Name: "🐳 XX-Large", Value: 13},
			{Token: "effort-massive", OptionID: "124b7e91", Name: "🦣 Massive", Value: 20},
		},
		Squad: Vocabulary{
			{Token: "squad-quality", OptionID: "2f6734ea", Name: "Quality"},
			{Token: "squad-value-proposition", OptionID: "0bb6ea9f", Name: "Value Proposition"},
			{Token: "squad-monetization", OptionID: "77cca23d", Name: "Monetization"},
			{Token: "squad-viral-coefficient", OptionID: "8f8fd22c", Name: "Viral Coefficient"},
			{Token: "squad-retention", OptionID: "0ee613f0", Name: "Retention"},
			{Token: "squad-security", OptionID: "a456f5ba", Name: "Security"},
			{Token: "squad-cost", OptionID: "e0e446a4", Name: "Cost"},
		},
		NSM: Vocabulary{
			{Token: "nsm-revenue", OptionID: "3d19c9f6", Name: "Revenue"},
			{Token: "nsm-retention", OptionID: "aaf7b16e", Name: "Retention"},
			{Token: "nsm-nps", OptionID: "434ba49f", Name: "NPS"},
		},
		OKR: Vocabulary{
			{Token: "okr-revenue-q3", OptionID: "3bd60deb", Name: "Revenue Q3"},
			{Token: "okr-nps-60", OptionID: "2960735a", Name: "NPS 60"},
			{Token: "okr-retention-w1w5", OptionID: "dd8f22b0", Name: "Retention W1-W5"},
			{Token: "okr-other", OptionID: "82357c06", Name: "Other"},
		},
		Priority: []TierRule{
			{Tier: types.TierVeryHigh, Min: 50000, OptionID: "afa4f8ad", Name: "🗻Very high"},
			{Tier: types.TierHigh, Min: 25000, OptionID: "e0d1d5fa", Name: "🏔 High"},
			{Tier: types.TierMedium, Min: 8000, OptionID: "ae238a73", Name: "🏕 Medium"},
			{Tier: types.TierLow, Min: 2000, OptionID: "99dda7bd", Name: "🏝 Low"},
			{Tier: types.TierVeryLow, Min: 0, OptionID: "e40d1db7", Name: "🏖️Very low"},
			{Tier: types.TierUrgent, OptionID: "f2613924", Name: "🌋 Urgent", Manual: true},
		},
		Phases: []PhaseOption{
			{
				Phase:         types.PhaseDiscovery,
				OptionID:      "041bb0d9",
				Name:          "Discovery",
				Labels:        []string{"🕵️ discovery 🔍", "📄 prd"},
				TitlePrefixes: []string{"[Discovery]", "[PRD]"},
			},
			{Phase: types.PhaseDesign, OptionID: "3fd8f8cd", Name: "Design"},
			{Phase: types.PhaseImplementation, OptionID: "9fc55396", Name: "Implementation"},
			{
				Phase:         types.PhaseResults,
				OptionID:      "509378eb",
				Name:          "Results & Learnings",
				Labels:        []string{"📊 resultados"},
				TitlePrefixes: []string{"[R&L]"},
			},
			{Phase: types.PhaseDone, OptionID: "abea4c05", Name: "Done"},
		},
		ReachLabel: "📈 Reach estimado",
		StripSections: []string{
			"🧩 Squad responsable",
			"⭐ NSM afectada",
			"🎯 OKR asociado",
			"📈 Reach estimado",
			"📊 Impact",
			"🔍 Confidence",
			"📦 Effort (Size)",
		},
		CopyFields: []types.Field{
			types.FieldStatus,
			types.FieldSquad,
			types.FieldPriority,
			types.FieldNSM,
			types.FieldOKR,
		},
		InitiativeLabels: []string{"initiative"},
		InitiativeTypes:  []string{"Initiative"},
	}
}
