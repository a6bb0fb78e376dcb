package entity

type Guild struct {
	Base
	Name string
}

type Member struct {
	Base
	Name string
}
