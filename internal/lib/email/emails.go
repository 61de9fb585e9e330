package email

import "context"

// DigitalIDIssuedData is the data the digital_id_issued template renders.
type DigitalIDIssuedData struct {
	FullName       string
	TouristID      string
	IssueDate      string
	ValidUntil     string
	BlockchainHash string
}

// SendDigitalIDIssuedEmail tells a tourist their digital ID is ready.
func (c *Client) SendDigitalIDIssuedEmail(ctx context.Context, to string, data DigitalIDIssuedData) error {
	return c.SendEmail(
		ctx,
		to,
		"Your Safe Trail digital ID is ready",
		TemplateDigitalIDIssued,
		data,
	)
}
