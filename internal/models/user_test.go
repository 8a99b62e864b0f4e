package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_Valid(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{RolePatient, true},
		{RoleHospital, true},
		{RoleProfessional, true},
		{RoleResearcher, true},
		{RoleAuditor, true},
		{Role(""), false},
		{Role("admin"), false},
		{Role("Patient"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Valid())
		})
	}
}

func TestBasicInfo_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", BasicInfo{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", BasicInfo{FirstName: "Ada"}.FullName())
	assert.Equal(t, "Lovelace", BasicInfo{LastName: "Lovelace"}.FullName())
	assert.Equal(t, "", BasicInfo{}.FullName())
}

func TestProfile_Clone(t *testing.T) {
	original := &Profile{
		BasicInfo: BasicInfo{ID: "u1", Role: RolePatient},
		MedicalInfo: &MedicalInfo{
			Allergies:   []string{"penicillin"},
			Conditions:  []string{"asthma"},
			Medications: []string{"salbutamol"},
		},
		HospitalInfo: &HospitalInfo{Departments: []string{"cardiology"}},
	}

	clone := original.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, original, clone)

	// Изменения копии не должны затрагивать оригинал
	clone.BasicInfo.Role = RoleAuditor
	clone.MedicalInfo.Allergies[0] = "latex"
	clone.HospitalInfo.Departments[0] = "oncology"

	assert.Equal(t, RolePatient, original.BasicInfo.Role)
	assert.Equal(t, "penicillin", original.MedicalInfo.Allergies[0])
	assert.Equal(t, "cardiology", original.HospitalInfo.Departments[0])
}

func TestProfile_CloneNil(t *testing.T) {
	var p *Profile
	assert.Nil(t, p.Clone())

	clone := (&Profile{BasicInfo: BasicInfo{ID: "u2"}}).Clone()
	assert.Nil(t, clone.MedicalInfo)
	assert.Nil(t, clone.HospitalInfo)
}
