package main

import "encoding/json"

type mainConfig struct {
	base       string
	passCode   string
	debugMode  bool
	silentMode bool
	version    bool
}

type uploadURLResp struct {
	URL string `json:"url"`
}

type uploadEntry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Size int64  `json:"size"`
}

func parseUploadURL(body []byte) (string, error) {
	result := new(uploadURLResp)
	if err := json.Unmarshal(body, result); err != nil {
		return "", errMalformedResponse
	}
	if result.URL == "" {
		return "", errMalformedResponse
	}
	return result.URL, nil
}

// The service answers the multipart post with one entry per uploaded file.
// Only one file is ever posted here; the last element is taken anyway in
// case the service pads the array.
func parseUploadEntries(body []byte) (*uploadEntry, error) {
	var entries []uploadEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errMalformedResponse
	}
	if len(entries) == 0 {
		return nil, errEmptyResponse
	}
	return &entries[len(entries)-1], nil
}
