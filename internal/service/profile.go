package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/tour-reservation/internal/model"
)

// PassengerStore persists a user's saved passengers.
type PassengerStore interface {
	ListByUser(ctx context.Context, userID uint64) ([]model.Passenger, error)
	Create(ctx context.Context, p *model.Passenger, dob string) error
	DeleteForUser(ctx context.Context, id, userID uint64) error
}

// ProfileService reads and edits a user's profile and passenger book.
type ProfileService struct {
	users      UserStore
	passengers PassengerStore
}

func NewProfileService(users UserStore, passengers PassengerStore) *ProfileService {
	return &ProfileService{users: users, passengers: passengers}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID uint64) (model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// Update validates and applies an allow-listed profile change.
func (s *ProfileService) Update(ctx context.Context, userID uint64, p model.ProfileUpdate) (model.User, error) {
	if p.Firstname != nil {
		if err := checkName("firstname", *p.Firstname); err != nil {
			return model.User{}, err
		}
	}
	if p.Lastname != nil {
		if err := checkName("lastname", *p.Lastname); err != nil {
			return model.User{}, err
		}
	}
	if p.Email != nil {
		e := strings.TrimSpace(*p.Email)
		if _, err := mail.ParseAddress(e); err != nil || len(e) > 100 {
			return model.User{}, fmt.Errorf("%w: invalid email", model.ErrValidation)
		}
		p.Email = &e
	}
	if p.Gender != nil {
		if err := checkGender(*p.Gender); err != nil {
			return model.User{}, err
		}
	}
	if p.DOB != nil {
		if _, err := parseDOB(*p.DOB); err != nil {
			return model.User{}, err
		}
	}
	if p.NationalCode != nil {
		if err := checkNationalCode(*p.NationalCode); err != nil {
			return model.User{}, err
		}
	}
	return s.users.UpdateProfile(ctx, userID, p)
}

// PassengerInput is a new passenger as submitted by the client.
type PassengerInput struct {
	Firstname    string `json:"firstname"`
	Lastname     string `json:"lastname"`
	Gender       int    `json:"gender"`
	DOB          string `json:"dob"`
	NationalCode string `json:"national_code"`
}

// Passengers lists the user's saved passengers.
func (s *ProfileService) Passengers(ctx context.Context, userID uint64) ([]model.Passenger, error) {
	return s.passengers.ListByUser(ctx, userID)
}

// AddPassenger validates in and stores it for the user.
func (s *ProfileService) AddPassenger(ctx context.Context, userID uint64, in PassengerInput) (model.Passenger, error) {
	if err := checkName("firstname", in.Firstname); err != nil {
		return model.Passenger{}, err
	}
	if err := checkName("lastname", in.Lastname); err != nil {
		return model.Passenger{}, err
	}
	if err := checkGender(in.Gender); err != nil {
		return model.Passenger{}, err
	}
	if err := checkNationalCode(in.NationalCode); err != nil {
		return model.Passenger{}, err
	}
	p := model.Passenger{
		UserID:       userID,
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		Gender:       in.Gender,
		NationalCode: in.NationalCode,
	}
	if in.DOB != "" {
		dob, err := parseDOB(in.DOB)
		if err != nil {
			return model.Passenger{}, err
		}
		p.DOB = &dob
	}
	if err := s.passengers.Create(ctx, &p, in.DOB); err != nil {
		return model.Passenger{}, err
	}
	return p, nil
}

// DeletePassenger removes one of the user's passengers.
func (s *ProfileService) DeletePassenger(ctx context.Context, userID, passengerID uint64) error {
	return s.passengers.DeleteForUser(ctx, passengerID, userID)
}

func checkName(field, v string) error {
	v = strings.TrimSpace(v)
	if v == "" || utf8.RuneCountInString(v) > 50 {
		return fmt.Errorf("%w: %s must be 1-50 characters", model.ErrValidation, field)
	}
	return nil
}

func checkGender(g int) error {
	if g != 1 && g != 2 {
		return fmt.Errorf("%w: gender must be 1 or 2", model.ErrValidation)
	}
	return nil
}

func checkNationalCode(c string) error {
	if len(c) != 10 || strings.Trim(c, "0123456789") != "" {
		return fmt.Errorf("%w: national_code must be 10 digits", model.ErrValidation)
	}
	return nil
}

func parseDOB(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dob must be YYYY-MM-DD", model.ErrValidation)
	}
	return t, nil
}
