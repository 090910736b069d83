package patient

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestSexLabel(t *testing.T) {
	if got := (Patient{Sex: SexMale}).SexLabel(); got != "Masculino" {
		t.Errorf("expected Masculino, got %q", got)
	}
	if got := (Patient{Sex: SexFemale}).SexLabel(); got != "Feminino" {
		t.Errorf("expected Feminino, got %q", got)
	}
}

func TestPatient_JSONUsesCamelCase(t *testing.T) {
	p := Patient{ID: uuid.New(), Name: "Ana Silva", PhoneNumber: "11999999999", Sex: SexFemale}
	raw, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"phoneNumber"`, `"clinicId"`, `"createdAt"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("expected %s in %s", key, raw)
		}
	}
}

func TestPatient_Input(t *testing.T) {
	p := Patient{ID: uuid.New(), Name: "Ana Silva", Email: "ana@x.com", PhoneNumber: "11999999999", Sex: SexFemale}
	in := p.Input()
	if in.ID != p.ID.String() || in.Sex != "female" || in.PhoneNumber != p.PhoneNumber {
		t.Errorf("unexpected input %+v", in)
	}
	if in.PatientID() != p.ID {
		t.Errorf("expected PatientID %s, got %s", p.ID, in.PatientID())
	}
}

func TestUpsertInput_PatientIDEmpty(t *testing.T) {
	if id := (UpsertInput{}).PatientID(); id != uuid.Nil {
		t.Errorf("expected nil id, got %s", id)
	}
}
