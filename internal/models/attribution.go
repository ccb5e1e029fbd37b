package models

// UTMParams carries the campaign attribution fields captured on submission.
type UTMParams struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Term     string `json:"utm_term,omitempty"`
	Content  string `json:"utm_content,omitempty"`
}

// MergeUTM resolves attribution from the three possible carriers. Precedence
// is query over header over body, decided independently per field.
func MergeUTM(query, header, body UTMParams) UTMParams {
	pick := func(q, h, b string) string {
		if q != "" {
			return q
		}
		if h != "" {
			return h
		}
		return b
	}
	return UTMParams{
		Source:   pick(query.Source, header.Source, body.Source),
		Medium:   pick(query.Medium, header.Medium, body.Medium),
		Campaign: pick(query.Campaign, header.Campaign, body.Campaign),
		Term:     pick(query.Term, header.Term, body.Term),
		Content:  pick(query.Content, header.Content, body.Content),
	}
}
