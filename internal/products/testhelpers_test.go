package products

import (
	"testing"
)

// sampleDocument mirrors the upstream registry shape, including the
// irregularities the decoder has to tolerate: numeric record ids, numeric
// string levels, null format arrays and a string spec version.
const sampleDocument = `[
  {
    "recordId": "rec-001",
    "applicant": "Acme Imaging",
    "product": {
      "DN": {"CN": "Acme Camera", "OU": "Devices"},
      "productType": "generatorProduct",
      "minVersion": "3.1",
      "assurance": {"maxAssuranceLevel": 2}
    },
    "containers": {
      "generate": {"image": ["jpeg", "png", "jpeg"], "video": null},
      "validate": {"image": ["heic"], "audio": []}
    },
    "dates": {"creation": "2023-02-10", "conformance": "2023-01-01", "lastModification": "2023-03-01"},
    "specVersion": ["2.0", "2.1"],
    "status": "conformant",
    "extra": {"ignored": true}
  },
  {
    "recordId": 1002,
    "applicant": "Beta Labs",
    "product": {
      "DN": {"CN": "Beta Validator"},
      "productType": "validatorProduct",
      "assurance": {"maxAssuranceLevel": "10"}
    },
    "containers": {
      "validate": {"video": ["mp4", "mov"], "documents": ["pdf"]}
    },
    "dates": {"creation": "2022-11-20", "conformance": "2023-06-01", "lastModification": "2023-06-02"},
    "specVersion": "2.1",
    "status": "revoked"
  },
  {
    "recordId": "rec-003",
    "applicant": "Acme Imaging",
    "product": {
      "DN": {"CN": "Acme Signer"},
      "productType": "toolkitProduct"
    },
    "containers": {
      "generate": {"audio": ["wav"], "image": ["png"]},
      "validate": {"image": ["png", "webp"]}
    },
    "dates": {"creation": "2024-01-05", "conformance": "2022-12-01", "lastModification": "2024-01-05"},
    "specVersion": ["2.1"],
    "status": "active_eol"
  }
]`

func sampleRecords(t *testing.T) []RawProductRecord {
	t.Helper()
	records, skipped, err := DecodeRecords([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("sample skipped %d records", skipped)
	}
	return records
}

func sampleProducts(t *testing.T) []ProductView {
	t.Helper()
	return NormalizeAll(sampleRecords(t))
}

func recordIDs(products []ProductView) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.RecordID
	}
	return ids
}

func intPtr(v int) *int { return &v }
