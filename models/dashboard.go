package models

type DashboardStats struct {
	TeamsTotal       int `json:"teams_total"`
	PlayersTotal     int `json:"players_total"`
	OfficialsTotal   int `json:"officials_total"`
	TournamentsTotal int `json:"tournaments_total"`
	GamesTotal       int `json:"games_total"`
	GamesUnresolved  int `json:"games_unresolved"`
}
