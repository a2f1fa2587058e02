package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"certdedup/internal/dedup"
	"certdedup/internal/identity"
	id "certdedup/pkg/domain"
	dErrors "certdedup/pkg/domain-errors"
)

const dateLayout = "2006-01-02"

// identityCheckRequest carries the raw identity fields for both the check
// and the profile-save endpoints. Field-level normalization (diacritics,
// phone format) belongs to the engine; here we only trim transport noise.
type identityCheckRequest struct {
	IDCard      string `json:"idCard,omitempty"`
	Name        string `json:"name,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Phone       string `json:"phone,omitempty"`

	dob time.Time
}

func (r *identityCheckRequest) Normalize() {
	r.IDCard = strings.TrimSpace(r.IDCard)
	r.Name = strings.TrimSpace(r.Name)
	r.DateOfBirth = strings.TrimSpace(r.DateOfBirth)
	r.Phone = strings.TrimSpace(r.Phone)
}

func (r *identityCheckRequest) Validate() error {
	if r.IDCard == "" && r.Name == "" && r.DateOfBirth == "" && r.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "at least one identity field is required")
	}
	if r.DateOfBirth != "" {
		dob, err := time.Parse(dateLayout, r.DateOfBirth)
		if err != nil {
			return dErrors.Newf(dErrors.CodeValidation, "dateOfBirth must be %s formatted", dateLayout)
		}
		r.dob = dob
	}
	return nil
}

func (r *identityCheckRequest) candidate() identity.Candidate {
	return identity.Candidate{
		IDCard:      r.IDCard,
		Name:        r.Name,
		DateOfBirth: r.dob,
		Phone:       r.Phone,
	}
}

type checkItemPayload struct {
	ItemID        string `json:"itemId"`
	PayloadBase64 string `json:"payloadBase64,omitempty"`
	DocHash       string `json:"docHash,omitempty"`
	StudentName   string `json:"studentName,omitempty"`
	DOB           string `json:"dob,omitempty"`
	Course        string `json:"course,omitempty"`

	payload []byte
	dob     time.Time
}

type checkOptionsPayload struct {
	TopK               int     `json:"topK,omitempty"`
	ThresholdUnique    float64 `json:"thresholdUnique,omitempty"`
	ThresholdDuplicate float64 `json:"thresholdDuplicate,omitempty"`
}

type certificateCheckRequest struct {
	CourseID string               `json:"courseId"`
	Items    []checkItemPayload   `json:"items"`
	Options  *checkOptionsPayload `json:"options,omitempty"`

	courseID id.CourseID
}

func (r *certificateCheckRequest) Normalize() {
	r.CourseID = strings.TrimSpace(r.CourseID)
	for i := range r.Items {
		r.Items[i].ItemID = strings.TrimSpace(r.Items[i].ItemID)
		r.Items[i].DocHash = strings.TrimSpace(r.Items[i].DocHash)
		r.Items[i].StudentName = strings.TrimSpace(r.Items[i].StudentName)
		r.Items[i].DOB = strings.TrimSpace(r.Items[i].DOB)
		r.Items[i].Course = strings.TrimSpace(r.Items[i].Course)
	}
}

func (r *certificateCheckRequest) Validate() error {
	courseID, err := id.ParseCourseID(r.CourseID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "courseId must be a valid uuid")
	}
	r.courseID = courseID

	if len(r.Items) == 0 {
		return dErrors.New(dErrors.CodeValidation, "items must not be empty")
	}
	for i := range r.Items {
		item := &r.Items[i]
		if item.ItemID == "" {
			return dErrors.Newf(dErrors.CodeValidation, "items[%d].itemId is required", i)
		}
		if item.PayloadBase64 == "" && item.DocHash == "" {
			return dErrors.Newf(dErrors.CodeValidation, "items[%d] needs payloadBase64 or docHash", i)
		}
		if item.PayloadBase64 != "" {
			payload, err := base64.StdEncoding.DecodeString(item.PayloadBase64)
			if err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "items[%d].payloadBase64 is not valid base64", i)
			}
			item.payload = payload
		}
		if item.DOB != "" {
			dob, err := time.Parse(dateLayout, item.DOB)
			if err != nil {
				return dErrors.Newf(dErrors.CodeValidation, "items[%d].dob must be %s formatted", i, dateLayout)
			}
			item.dob = dob
		}
	}

	if r.Options != nil {
		if r.Options.TopK < 0 {
			return dErrors.New(dErrors.CodeValidation, "options.topK must not be negative")
		}
		if r.Options.ThresholdUnique < 0 || r.Options.ThresholdDuplicate > 1 {
			return dErrors.New(dErrors.CodeValidation, "options thresholds must lie in [0,1]")
		}
	}
	return nil
}

func (r *certificateCheckRequest) candidateItems() []dedup.CandidateItem {
	items := make([]dedup.CandidateItem, 0, len(r.Items))
	for i := range r.Items {
		items = append(items, dedup.CandidateItem{
			ItemID:       r.Items[i].ItemID,
			Payload:      r.Items[i].payload,
			ContentHash:  r.Items[i].DocHash,
			DeclaredName: r.Items[i].StudentName,
			DateOfBirth:  r.Items[i].dob,
			Course:       r.Items[i].Course,
		})
	}
	return items
}

// options resolves call-time overrides against the configured defaults so
// the handler can echo the effective values in the response meta.
func (r *certificateCheckRequest) options(defaults dedup.Options) dedup.Options {
	opts := defaults
	if r.Options == nil {
		return opts
	}
	if r.Options.TopK > 0 {
		opts.TopK = r.Options.TopK
	}
	if r.Options.ThresholdUnique > 0 {
		opts.Thresholds.Unique = r.Options.ThresholdUnique
	}
	if r.Options.ThresholdDuplicate > 0 {
		opts.Thresholds.Duplicate = r.Options.ThresholdDuplicate
	}
	return opts
}
