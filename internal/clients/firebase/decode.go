package firebase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
)

// decodeRecords walks the node token by token so records keep the order the database sent.
// The REST API renders nodes whose keys are all small integers as arrays; array holes come
// back as null and are skipped.
func decodeRecords(body []byte) ([]domain.ActivityRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok {
	case nil:
		return []domain.ActivityRecord{}, nil
	case json.Delim('{'):
		return decodeObject(dec)
	case json.Delim('['):
		return decodeArray(dec)
	default:
		return nil, fmt.Errorf("unexpected %T at activities root", tok)
	}
}

func decodeObject(dec *json.Decoder) ([]domain.ActivityRecord, error) {
	records := []domain.ActivityRecord{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("record %s: %w", key, err)
		}
		rec, skip, err := decodeRecord(key, raw)
		if err != nil {
			return nil, err
		}
		if !skip {
			records = append(records, rec)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeArray(dec *json.Decoder) ([]domain.ActivityRecord, error) {
	records := []domain.ActivityRecord{}
	for i := 0; dec.More(); i++ {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rec, skip, err := decodeRecord(strconv.Itoa(i), raw)
		if err != nil {
			return nil, err
		}
		if !skip {
			records = append(records, rec)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return records, nil
}

func decodeRecord(key string, raw json.RawMessage) (domain.ActivityRecord, bool, error) {
	if string(raw) == "null" {
		return domain.ActivityRecord{}, true, nil
	}

	var rec domain.ActivityRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.ActivityRecord{}, false, fmt.Errorf("record %s: %w", key, err)
	}
	rec.ID = key
	return rec, false, nil
}
