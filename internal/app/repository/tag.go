package repository

import "github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"

func (r *Repository) GetAllTags() ([]ds.Tag, error) {
	var tags []ds.Tag
	err := r.db.Where("is_deleted = ?", false).Order("name").Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *Repository) CreateTag(name string) (*ds.Tag, error) {
	tag := ds.Tag{Name: name}
	if err := r.db.Create(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *Repository) DeleteTag(id uint) error {
	return r.db.Model(&ds.Tag{}).Where("id = ?", id).Update("is_deleted", true).Error
}

// TagsExist reports whether every given tag name is a known, non-deleted tag.
func (r *Repository) TagsExist(names []string) (bool, error) {
	if len(names) == 0 {
		return true, nil
	}
	var count int64
	err := r.db.Model(&ds.Tag{}).
		Where("name IN ? AND is_deleted = ?", names, false).
		Count(&count).Error
	return count == int64(len(names)), err
}
