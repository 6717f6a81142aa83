package config

import (
	"context"
	"encoding/base64"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. Credentials come from
// FIREBASE_CREDENTIALS_BASE64, GOOGLE_APPLICATION_CREDENTIALS, or application
// default credentials, in that order.
func InitFirebase(projectID string) *firebase.App {
	ctx := context.Background()
	fbConfig := &firebase.Config{ProjectID: projectID}

	if base64Creds := os.Getenv("FIREBASE_CREDENTIALS_BASE64"); base64Creds != "" {
		log.Println("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(base64Creds)
		if err != nil {
			log.Fatalf("Error decoding base64 credentials: %v", err)
		}

		app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsJSON(decoded))
		if err != nil {
			log.Fatalf("error initializing firebase app: %v", err)
		}
		return app
	}

	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		log.Printf("Using Firebase credentials file: %s", credFile)
		app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(credFile))
		if err != nil {
			log.Fatalf("error initializing firebase app: %v", err)
		}
		return app
	}

	// Application default credentials (works on Cloud Run / GCE).
	app, err := firebase.NewApp(ctx, fbConfig)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v", err)
	}
	return app
}
