package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Carts() CartRepository
	Orders() OrderRepository
	ProductionTasks() ProductionTaskRepository
	BlogPosts() BlogRepository
}
