package repository

// Repository bundles the item store and the like ledger selected at startup.
type Repository struct {
	Items ItemRepository
	Likes LikeLedger

	ItemBackend string
	LikeBackend string
}

func NewRepository(items ItemRepository, likes LikeLedger, itemBackend, likeBackend string) *Repository {
	return &Repository{
		Items:       items,
		Likes:       likes,
		ItemBackend: itemBackend,
		LikeBackend: likeBackend,
	}
}
