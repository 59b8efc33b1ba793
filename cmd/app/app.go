package main

import "github.com/DRSN-tech/wardrobe-backend/internal/app"

//	@title			Wardrobe Backend API
//	@version		1.0
//	@description	Сервис гардероба: конвейер добавления вещи по фото и операции над вещами

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	app.Run()
}
