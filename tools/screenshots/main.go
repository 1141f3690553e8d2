// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"flag"
	"fmt"
	"log"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/c2FmZQ/storage"
	"github.com/chromedp/chromedp"
	"github.com/ttbt-io/cattlefarm/backend"
	"github.com/ttbt-io/cattlefarm/tools/e2ehelpers"
)

var (
	chromeURL = flag.String("chrome-url", "", "The url of the remote debugging port")
	outputDir = flag.String("output-dir", "/screenshots", "Directory to save screenshots")
)

func main() {
	flag.Parse()

	if *chromeURL == "" {
		log.Fatal("--chrome-url must be set")
	}

	baseURL := startServer()
	log.Printf("Server started at %s", baseURL)

	ctx, cancel := chromedp.NewRemoteAllocator(context.Background(), *chromeURL)
	defer cancel()

	ctx, cancel = chromedp.NewContext(ctx, chromedp.WithLogf(log.Printf))
	defer cancel()

	ctx, cancel = context.WithTimeout(ctx, 180*time.Second)
	defer cancel()

	// Ensure output dir exists
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	log.Println("Starting screenshot generation...")

	if err := generateScreenshots(ctx, baseURL); err != nil {
		log.Fatalf("Failed to generate screenshots: %v", err)
	}

	log.Println("Screenshots generated successfully.")
}

func generateScreenshots(ctx context.Context, baseURL string) error {
	if err := e2ehelpers.ClearState(ctx, baseURL); err != nil {
		return err
	}
	if err := chromedp.Run(ctx, e2ehelpers.DisableCSSAnimations()); err != nil {
		return err
	}

	username := "demo_user"

	log.Println("Capturing: Login Form")
	if err := captureScreenshot(ctx, "login.png"); err != nil {
		return err
	}

	log.Println("Capturing: Registration Form")
	if err := chromedp.Run(ctx,
		chromedp.Click(`#show-register`, chromedp.ByQuery),
		chromedp.WaitVisible(`#register-form.active`, chromedp.ByQuery),
		chromedp.SetValue(`#register-username`, username, chromedp.ByQuery),
		chromedp.SetValue(`#register-password`, "password123", chromedp.ByQuery),
		chromedp.SetValue(`#register-password-confirm`, "password123", chromedp.ByQuery),
	); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "register.png"); err != nil {
		return err
	}
	if err := chromedp.Run(ctx,
		chromedp.Click(`#register-form button[type="submit"]`, chromedp.ByQuery),
		chromedp.WaitVisible(`#login-form.active`, chromedp.ByQuery),
	); err != nil {
		return err
	}

	log.Println("Capturing: Admin Page")
	if err := e2ehelpers.Login(ctx, "admin", "admin"); err != nil {
		return err
	}
	if err := e2ehelpers.ExpectAdminPage(ctx); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "admin.png"); err != nil {
		return err
	}

	log.Println("Capturing: Assign Points")
	if err := e2ehelpers.AssignPoints(ctx, username, 100); err != nil {
		return err
	}
	if err := e2ehelpers.ExpectMessage(ctx, "#admin-message", "成功為", "success"); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "assign-points.png"); err != nil {
		return err
	}
	if err := e2ehelpers.Logout(ctx); err != nil {
		return err
	}

	log.Println("Capturing: Game View")
	if err := e2ehelpers.Login(ctx, username, "password123"); err != nil {
		return err
	}
	if err := e2ehelpers.ExpectUserPage(ctx); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "game.png"); err != nil {
		return err
	}

	log.Println("Capturing: Buy Grass and Feed")
	if err := e2ehelpers.BuyGrass(ctx, 20); err != nil {
		return err
	}
	if err := e2ehelpers.ExpectMessage(ctx, "#game-message", "成功購買", "success"); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if err := e2ehelpers.FeedCattle(ctx, 1); err != nil {
			return err
		}
	}
	if err := e2ehelpers.FeedCattle(ctx, 2); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "feeding.png"); err != nil {
		return err
	}

	log.Println("Capturing: Full Animal with Countdown")
	for i := 0; i < 5; i++ {
		if err := e2ehelpers.FeedCattle(ctx, 1); err != nil {
			return err
		}
	}
	if err := e2ehelpers.ExpectMessage(ctx, "#game-message", "成功餵養乳牛！飽食度：100/100", "success"); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "countdown.png"); err != nil {
		return err
	}

	log.Println("Capturing: Status View")
	if err := e2ehelpers.ShowStatusView(ctx); err != nil {
		return err
	}
	if err := captureScreenshot(ctx, "status.png"); err != nil {
		return err
	}

	return nil
}

func captureScreenshot(ctx context.Context, filename string) error {
	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return err
	}
	path := filepath.Join(*outputDir, filename)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return err
	}
	log.Printf("Saved %s", path)
	return nil
}

func startServer() string {
	cert, err := generateSelfSignedCert()
	if err != nil {
		log.Fatalf("Failed to generate cert: %v", err)
	}
	dataDir, err := os.MkdirTemp("", "cattlefarm-screenshots")
	if err != nil {
		log.Fatalf("Failed to create data dir: %v", err)
	}
	l, err := net.Listen("tcp", "0.0.0.0:0")
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	if _, err := backend.StartServer(backend.Options{
		Listener: l,
		Cert:     cert,
		Debug:    false,
		DataDir:  dataDir,
		Storage:  storage.New(dataDir, nil),
	}); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	return fmt.Sprintf("https://devtest.local:%s", port)
}

func generateSelfSignedCert() (*tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Test Org"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour * 24),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost", "devtest", "devtest.local"},
	}
	derBytes, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}
	crtPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: derBytes})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	cert, err := tls.X509KeyPair(crtPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}
