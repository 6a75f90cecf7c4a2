package models

type Game struct {
	Id     string
	Name   string
	Status string // "false" until started, then "in progress" / "finished"
}

type GameCreateDto struct {
	Name string
}

type VerifyGameDto struct {
	Code    string
	User_id string
}
