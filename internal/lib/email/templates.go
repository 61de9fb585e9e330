package email

// Template names a file under templates/ without its extension.
type Template string

const (
	TemplateDigitalIDIssued Template = "digital_id_issued"
)
