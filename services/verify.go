package services

import (
	"strings"
)

// Weights per identity field; fields missing from both sides score their full
// weight only when the user left them blank too.
var verifyWeights = map[string]float64{
	"full_name":     30,
	"id_number":     30,
	"date_of_birth": 20,
	"gender":        10,
	"address":       10,
}

type FieldMatch struct {
	Match  bool    `json:"match"`
	Score  float64 `json:"score"` // 0-100
	Reason string  `json:"reason"`
}

type VerifyResult struct {
	IsVerified bool                  `json:"is_verified"`
	MatchScore float64               `json:"match_score"` // 0-100
	Details    map[string]FieldMatch `json:"details"`
	Mismatches []string              `json:"mismatches"`
}

// VerifyUserInfo compares the identity data the user typed in against the OCR
// output from the ID card. Comparison is diacritic- and case-insensitive, and
// tolerant of the usual date formats. Overall score >= 70 verifies.
func VerifyUserInfo(userInput, ocrData map[string]string) VerifyResult {
	result := VerifyResult{Details: map[string]FieldMatch{}}

	var total float64
	for field, weight := range verifyWeights {
		user := normalizeField(field, userInput[field])
		ocr := normalizeField(field, ocrData[field])

		var fm FieldMatch
		switch {
		case ocr == "" && user == "":
			fm = FieldMatch{Match: true, Score: 100, Reason: "field empty on both sides"}
		case ocr == "":
			// OCR could not read the field, don't punish the user for it
			fm = FieldMatch{Match: true, Score: 70, Reason: "not readable from document"}
		case user == "":
			fm = FieldMatch{Match: false, Score: 0, Reason: "missing from user input"}
		case user == ocr:
			fm = FieldMatch{Match: true, Score: 100, Reason: "exact match"}
		case field == "address" && (strings.Contains(ocr, user) || strings.Contains(user, ocr)):
			fm = FieldMatch{Match: true, Score: 85, Reason: "partial address match"}
		default:
			fm = FieldMatch{Match: false, Score: 0, Reason: "values differ"}
		}

		result.Details[field] = fm
		total += weight * fm.Score / 100
		if !fm.Match {
			result.Mismatches = append(result.Mismatches, field)
		}
	}

	result.MatchScore = total
	result.IsVerified = total >= 70
	return result
}

func normalizeField(field, value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = stripDiacritics(v)
	v = strings.Join(strings.Fields(v), " ")

	switch field {
	case "date_of_birth":
		return normalizeDate(v)
	case "gender":
		return normalizeGender(v)
	case "id_number":
		return strings.ReplaceAll(v, " ", "")
	}
	return v
}

// normalizeDate accepts DD/MM/YYYY, DD-MM-YYYY and YYYY-MM-DD and returns DD/MM/YYYY.
func normalizeDate(v string) string {
	v = strings.ReplaceAll(v, "-", "/")
	parts := strings.Split(v, "/")
	if len(parts) != 3 {
		return v
	}
	// ISO order has the 4-digit year first
	if len(parts[0]) == 4 {
		parts[0], parts[2] = parts[2], parts[0]
	}
	if len(parts[0]) == 1 {
		parts[0] = "0" + parts[0]
	}
	if len(parts[1]) == 1 {
		parts[1] = "0" + parts[1]
	}
	return strings.Join(parts, "/")
}

func normalizeGender(v string) string {
	switch v {
	case "nam", "male", "m":
		return "male"
	case "nu", "female", "f":
		return "female"
	}
	return v
}

var diacriticReplacer = strings.NewReplacer(
	"á", "a", "à", "a", "ả", "a", "ã", "a", "ạ", "a",
	"ă", "a", "ắ", "a", "ằ", "a", "ẳ", "a", "ẵ", "a", "ặ", "a",
	"â", "a", "ấ", "a", "ầ", "a", "ẩ", "a", "ẫ", "a", "ậ", "a",
	"é", "e", "è", "e", "ẻ", "e", "ẽ", "e", "ẹ", "e",
	"ê", "e", "ế", "e", "ề", "e", "ể", "e", "ễ", "e", "ệ", "e",
	"í", "i", "ì", "i", "ỉ", "i", "ĩ", "i", "ị", "i",
	"ó", "o", "ò", "o", "ỏ", "o", "õ", "o", "ọ", "o",
	"ô", "o", "ố", "o", "ồ", "o", "ổ", "o", "ỗ", "o", "ộ", "o",
	"ơ", "o", "ớ", "o", "ờ", "o", "ở", "o", "ỡ", "o", "ợ", "o",
	"ú", "u", "ù", "u", "ủ", "u", "ũ", "u", "ụ", "u",
	"ư", "u", "ứ", "u", "ừ", "u", "ử", "u", "ữ", "u", "ự", "u",
	"ý", "y", "ỳ", "y", "ỷ", "y", "ỹ", "y", "ỵ", "y",
	"đ", "d",
)

func stripDiacritics(v string) string {
	return diacriticReplacer.Replace(v)
}
