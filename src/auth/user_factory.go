package auth

import "fieldadmin/src/helpers"

type UserFactory interface {
	NewInvitation(email, fullName, role, userType string) *Invitation
}

type UserFactoryImpl struct {
}

func NewUserFactory() UserFactory {
	return &UserFactoryImpl{}
}

func (f *UserFactoryImpl) NewInvitation(email, fullName, role, userType string) *Invitation {
	if userType == "" {
		userType = "Internal"
	}
	return &Invitation{
		ID:       helpers.GenerateUUID(),
		Email:    email,
		FullName: fullName,
		Role:     role,
		UserType: userType,
	}
}
