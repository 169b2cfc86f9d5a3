package repository

import "github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"

func (r *Repository) CreateUser(login, passwordHash, email, fullName string, userRole int) (*ds.User, error) {
	user := ds.User{
		Login:    login,
		Password: passwordHash,
		Email:    email,
		FullName: fullName,
		Role:     userRole,
	}
	if err := r.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByLogin(login string) (*ds.User, error) {
	var user ds.User
	if err := r.db.Where("login = ?", login).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetUserByID(id uint) (*ds.User, error) {
	var user ds.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UserExistsByLogin(login string) (bool, error) {
	var count int64
	err := r.db.Model(&ds.User{}).Where("login = ?", login).Count(&count).Error
	return count > 0, err
}
