package models

import "time"

// Role определяет роль пользователя портала
type Role string

const (
	RolePatient      Role = "patient"
	RoleHospital     Role = "hospital"
	RoleProfessional Role = "professional"
	RoleResearcher   Role = "researcher"
	RoleAuditor      Role = "auditor"
)

// Valid сообщает, является ли роль одной из известных
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleHospital, RoleProfessional, RoleResearcher, RoleAuditor:
		return true
	}
	return false
}

// Roles возвращает все роли портала
func Roles() []Role {
	return []Role{RolePatient, RoleHospital, RoleProfessional, RoleResearcher, RoleAuditor}
}

// Profile is the user snapshot embedded in access tokens under user_data
// and returned by GET /api/profile/.
type Profile struct {
	BasicInfo    BasicInfo     `json:"basic_info"`
	MedicalInfo  *MedicalInfo  `json:"medical_info,omitempty"`
	HospitalInfo *HospitalInfo `json:"hospital_info,omitempty"`
}

// BasicInfo содержит общие данные пользователя
type BasicInfo struct {
	ID                     string `json:"id"`
	Email                  string `json:"email"`
	FirstName              string `json:"first_name"`
	LastName               string `json:"last_name"`
	Role                   Role   `json:"role"`
	Phone                  string `json:"phone,omitempty"`
	Location               string `json:"location,omitempty"`
	HasCompletedOnboarding bool   `json:"has_completed_onboarding"`
}

// FullName возвращает имя и фамилию через пробел
func (b BasicInfo) FullName() string {
	switch {
	case b.FirstName == "":
		return b.LastName
	case b.LastName == "":
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

// MedicalInfo — медицинский профиль (пациенты и специалисты)
type MedicalInfo struct {
	DateOfBirth    string   `json:"date_of_birth,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	BloodType      string   `json:"blood_type,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	Conditions     []string `json:"conditions,omitempty"`
	Medications    []string `json:"medications,omitempty"`
	Specialization string   `json:"specialization,omitempty"`
	LicenseNumber  string   `json:"license_number,omitempty"`
}

// HospitalInfo — профиль учреждения
type HospitalInfo struct {
	Name               string   `json:"name,omitempty"`
	RegistrationNumber string   `json:"registration_number,omitempty"`
	Address            string   `json:"address,omitempty"`
	Departments        []string `json:"departments,omitempty"`
}

// Clone returns a deep copy so callers can't mutate shared session state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.MedicalInfo != nil {
		m := *p.MedicalInfo
		m.Allergies = append([]string(nil), p.MedicalInfo.Allergies...)
		m.Conditions = append([]string(nil), p.MedicalInfo.Conditions...)
		m.Medications = append([]string(nil), p.MedicalInfo.Medications...)
		c.MedicalInfo = &m
	}
	if p.HospitalInfo != nil {
		h := *p.HospitalInfo
		h.Departments = append([]string(nil), p.HospitalInfo.Departments...)
		c.HospitalInfo = &h
	}
	return &c
}

// TokenPair — пара токенов, выданная бэкендом
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RevokedToken представляет отозванный access token на стороне портала
type RevokedToken struct {
	TokenHash string    `json:"token_hash"` // sha256 хеш токена (hex)
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"` // после этого момента запись можно удалить
	RevokedAt time.Time `json:"revoked_at"`
}
