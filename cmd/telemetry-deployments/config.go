package main

type flagType int
type flagMap map[flagType]string

const (
	servicePort flagType = iota
	controlPort

	configurationFile
	devmode

	dbHost
	dbPort
	dbName
	dbUser
	dbPassword
	dbSSLMode

	bctwURL
	critterbaseURL
	externalTimeout

	tokenURL
	clientID
	clientSecret
	staticToken
)

func defaultFlags() flagMap {
	return flagMap{
		servicePort: "8080",
		controlPort: "8000",

		configurationFile: "/opt/diwise/config/notifications.yaml",
		devmode:           "false",

		dbHost:     "",
		dbPort:     "5432",
		dbName:     "telemetry",
		dbUser:     "",
		dbPassword: "",
		dbSSLMode:  "disable",

		bctwURL:         "http://bctw-api:3000",
		critterbaseURL:  "http://critterbase-api:8080/api",
		externalTimeout: "10s",

		tokenURL:     "",
		clientID:     "",
		clientSecret: "",
		staticToken:  "",
	}
}
