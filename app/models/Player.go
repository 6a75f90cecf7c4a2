package models

type Player struct {
	User_id  string
	Game_id  string
	Username string
	Active   string
}
