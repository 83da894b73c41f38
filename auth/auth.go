package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"aurie/db"
	"aurie/globals"
	"aurie/middleware"
	"aurie/models"
	"aurie/rdx"
	"aurie/session"
	"aurie/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshTokenTTL = 7 * 24 * time.Hour
	accessTokenTTL  = 15 * time.Minute
)

func generateAccessToken(user models.User) (string, error) {
	claims := &middleware.Claims{
		Username: user.Username,
		UserID:   user.UserID,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Register handles POST /api/auth/register. Accounts are keyed by email;
// the display username is the email's local part.
func Register(broker *session.Broker) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
			Name     string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		input.Email = strings.TrimSpace(strings.ToLower(input.Email))
		if input.Email == "" || input.Password == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		err := db.UserCollection.FindOne(context.TODO(), bson.M{"email": input.Email}).Err()
		if err == nil {
			utils.RespondWithError(w, http.StatusConflict, "User already exists")
			return
		} else if err != mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("Failed to hash password for %s: %v", input.Email, err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Could not process password")
			return
		}

		user := models.User{
			UserID:       "u" + utils.GenerateRandomString(10),
			Username:     utils.UsernameFromEmail(input.Email),
			Email:        input.Email,
			PasswordHash: string(hashedPassword),
			Name:         input.Name,
			Followers:    []string{},
			Following:    []string{},
			JoinedAt:     time.Now(),
		}

		if _, err := db.UserCollection.InsertOne(context.TODO(), user); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
			return
		}

		if err := rdx.RdxSet("users:"+user.UserID, user.Username, 0); err != nil {
			log.Printf("Redis cache failed: %v", err)
		}

		signIn(w, broker, user)
	}
}

// Login handles POST /api/auth/login.
func Login(broker *session.Broker) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var input struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		input.Email = strings.TrimSpace(strings.ToLower(input.Email))
		if input.Email == "" || input.Password == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		var storedUser models.User
		err := db.UserCollection.FindOne(context.TODO(), bson.M{"email": input.Email}).Decode(&storedUser)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(storedUser.PasswordHash), []byte(input.Password)); err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		signIn(w, broker, storedUser)
	}
}

func signIn(w http.ResponseWriter, broker *session.Broker, user models.User) {
	tokenString, err := generateAccessToken(user)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := generateRefreshToken()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate refresh token")
		return
	}

	_, err = db.UserCollection.UpdateOne(
		context.TODO(),
		bson.M{"userid": user.UserID},
		bson.M{"$set": bson.M{
			"refreshtoken": hashToken(refreshToken),
			"refreshexp":   time.Now().Add(refreshTokenTTL),
			"last_login":   time.Now(),
		}},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to store refresh token")
		return
	}

	if err := rdx.RdxHset("tokki", user.UserID, tokenString); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	broker.Publish(session.Event{User: &user})

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":        tokenString,
		"refreshToken": refreshToken,
		"userid":       user.UserID,
	}, "Login successful", nil)
}

// Logout handles POST /api/auth/logout.
func Logout(broker *session.Broker) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		tokenString := r.Header.Get("Authorization")
		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			utils.RespondWithError(w, http.StatusUnauthorized, "Missing token")
			return
		}

		claims, err := middleware.ValidateJWT(tokenString)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		if err := rdx.RdxHdel("tokki", claims.UserID); err != nil {
			log.Printf("Error removing token from Redis: %v", err)
		}

		_, err = db.UserCollection.UpdateOne(
			context.TODO(),
			bson.M{"userid": claims.UserID},
			bson.M{"$set": bson.M{"refreshtoken": "", "refreshexp": time.Time{}}},
		)
		if err != nil {
			log.Printf("Failed to revoke refresh token for %s: %v", claims.UserID, err)
		}

		broker.Publish(session.Event{User: nil})

		utils.SendResponse(w, http.StatusOK, nil, "User logged out successfully", nil)
	}
}

// Refresh handles POST /api/auth/refresh. The stored refresh token is
// single use; a new pair is issued on success.
func Refresh(broker *session.Broker) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var input struct {
			UserID       string `json:"userid"`
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		if input.UserID == "" || input.RefreshToken == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "Missing refresh token")
			return
		}

		var storedUser models.User
		err := db.UserCollection.FindOne(context.TODO(), bson.M{"userid": input.UserID}).Decode(&storedUser)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		if storedUser.RefreshToken == "" ||
			storedUser.RefreshToken != hashToken(input.RefreshToken) ||
			time.Now().After(storedUser.RefreshExpiry) {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}

		signIn(w, broker, storedUser)
	}
}
