package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyUserInfoExactMatch(t *testing.T) {
	input := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "1992-04-15",
		"gender":        "male",
		"address":       "123 Pho Hue, Ha Noi",
	}
	ocr := map[string]string{
		"full_name":     "NGUYỄN VĂN AN",
		"id_number":     "001234567890",
		"date_of_birth": "15/04/1992",
		"gender":        "Nam",
		"address":       "123 Phố Huế, Hà Nội",
	}

	result := VerifyUserInfo(input, ocr)
	assert.True(t, result.IsVerified)
	assert.Equal(t, float64(100), result.MatchScore)
	assert.Empty(t, result.Mismatches)
}

func TestVerifyUserInfoNameMismatch(t *testing.T) {
	input := map[string]string{
		"full_name":     "Tran Thi Binh",
		"id_number":     "001234567890",
		"date_of_birth": "1992-04-15",
		"gender":        "male",
		"address":       "123 Pho Hue",
	}
	ocr := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "15/04/1992",
		"gender":        "nam",
		"address":       "123 Pho Hue",
	}

	result := VerifyUserInfo(input, ocr)
	// Name carries 30 points, so 70 remains: still the verification floor
	assert.Equal(t, float64(70), result.MatchScore)
	assert.Contains(t, result.Mismatches, "full_name")
}

func TestVerifyUserInfoIDAndNameMismatch(t *testing.T) {
	input := map[string]string{
		"full_name":     "Tran Thi Binh",
		"id_number":     "099999999999",
		"date_of_birth": "1992-04-15",
		"gender":        "female",
		"address":       "456 Le Loi",
	}
	ocr := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "15/04/1992",
		"gender":        "nu",
		"address":       "456 Le Loi",
	}

	result := VerifyUserInfo(input, ocr)
	assert.False(t, result.IsVerified)
	assert.Contains(t, result.Mismatches, "full_name")
	assert.Contains(t, result.Mismatches, "id_number")
}

func TestVerifyUserInfoPartialAddress(t *testing.T) {
	input := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "1992-04-15",
		"gender":        "male",
		"address":       "123 Pho Hue",
	}
	ocr := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "15/04/1992",
		"gender":        "nam",
		"address":       "So 123 Pho Hue, Quan Hai Ba Trung, Ha Noi",
	}

	result := VerifyUserInfo(input, ocr)
	assert.True(t, result.IsVerified)
	assert.True(t, result.Details["address"].Match)
	assert.Equal(t, float64(85), result.Details["address"].Score)
}

func TestVerifyUserInfoUnreadableField(t *testing.T) {
	input := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "1992-04-15",
		"gender":        "male",
		"address":       "123 Pho Hue",
	}
	ocr := map[string]string{
		"full_name":     "Nguyen Van An",
		"id_number":     "001234567890",
		"date_of_birth": "15/04/1992",
		"gender":        "nam",
		"address":       "",
	}

	result := VerifyUserInfo(input, ocr)
	assert.True(t, result.IsVerified)
	assert.Equal(t, "not readable from document", result.Details["address"].Reason)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "15/04/1992", normalizeDate("1992-04-15"))
	assert.Equal(t, "15/04/1992", normalizeDate("15/04/1992"))
	assert.Equal(t, "05/04/1992", normalizeDate("5/4/1992"))
	assert.Equal(t, "not a date", normalizeDate("not a date"))
}
