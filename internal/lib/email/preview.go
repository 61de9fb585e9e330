package email

// PreviewData holds sample data for every template, used to render
// previews and to check templates execute cleanly.
var PreviewData = map[Template]any{
	TemplateDigitalIDIssued: DigitalIDIssuedData{
		FullName:       "Asha Devi",
		TouristID:      "T1",
		IssueDate:      "2025-01-15",
		ValidUntil:     "2025-02-14",
		BlockchainHash: "0x5f2c9a0d4b7e8f1a3c6d9e2b5a8f0c3d6e9b2a5f8c1d4e7a0b3c6d9f2e5a8b1c",
	},
}
