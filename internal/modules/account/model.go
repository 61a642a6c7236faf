package account

// Manager is a principal that owns one or more shops. Phone is the identity key.
type Manager struct {
	Phone        string `db:"phone" json:"phone"`
	Name         string `db:"name" json:"name"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// Shop is the tenancy boundary: all inventory and order data is partitioned
// by shop.
type Shop struct {
	ID           int64  `db:"shop_id" json:"shop_id"`
	Name         string `db:"shopname" json:"shopname"`
	ManagerPhone string `db:"manager_phone" json:"manager"`
}

// Staff is a principal bound to exactly one shop. The shop assignment is
// immutable after creation; there is no reassignment path.
type Staff struct {
	Phone        string `db:"phone" json:"phone"`
	Name         string `db:"name" json:"name"`
	PasswordHash string `db:"password_hash" json:"-"`
	ShopID       int64  `db:"shop_id" json:"shop_id"`
	IsActive     bool   `db:"is_active" json:"is_active"`
}
