package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormValue is user text for a form field. Clients may send it as a JSON string
// or a bare number; numbers keep their literal text so the service parses them.
type FormValue string

func (v *FormValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("form value must be a string or a number: %s", data)
	}
	*v = FormValue(n.String())
	return nil
}
