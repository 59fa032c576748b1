package fetch

// Notifier shows a message to the user.
type Notifier interface {
	Notify(message string)
}

// Display decodes resp's body and passes its detail field to n. Nothing is
// shown when the detail is empty. The body is consumed.
func Display(resp Response, n Notifier) error {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := resp.JSON(&body); err != nil {
		return err
	}
	if body.Detail == "" {
		return nil
	}
	n.Notify(body.Detail)
	return nil
}
