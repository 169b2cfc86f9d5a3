package ds

// Tag is a configuration-step label users attach to a provisioning order
// (environment, team, cost centre). The wizard requires at least one.
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(50);unique;not null"`
	IsDeleted bool   `gorm:"type:boolean;default:false;not null"`
}
