package lands

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"krishimitra/db"
	"krishimitra/models"
	"krishimitra/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateLand lists a farmer's land for sale or rent.
func CreateLand(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	if userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var land models.Land
	if err := json.NewDecoder(r.Body).Decode(&land); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if land.Title == "" || land.Location == "" || land.AreaAcres <= 0 || land.Price <= 0 {
		http.Error(w, "Missing or invalid fields", http.StatusBadRequest)
		return
	}
	if land.Mode != "sale" && land.Mode != "rent" {
		http.Error(w, "Mode must be sale or rent", http.StatusBadRequest)
		return
	}

	land.LandID = utils.GetUUID()
	land.OwnerID = userID
	land.CreatedAt = time.Now()

	if _, err := db.LandsCollection.InsertOne(ctx, land); err != nil {
		log.Println("CreateLand insert error:", err)
		http.Error(w, "Listing creation failed", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, land)
}

// ListLands browses listings, optionally filtered by ?mode=sale|rent.
func ListLands(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if mode := r.URL.Query().Get("mode"); mode != "" {
		filter["mode"] = mode
	}

	opts := utils.ParseQueryOptions(r)
	findOpts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(opts.Limit)).
		SetSkip(int64((opts.Page - 1) * opts.Limit))

	cursor, err := db.LandsCollection.Find(ctx, filter, findOpts)
	if err != nil {
		log.Println("ListLands find error:", err)
		http.Error(w, "Could not retrieve listings", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(ctx)

	var lands []models.Land
	if err := cursor.All(ctx, &lands); err != nil {
		log.Println("ListLands cursor error:", err)
		http.Error(w, "Error reading listings", http.StatusInternalServerError)
		return
	}
	if lands == nil {
		lands = []models.Land{}
	}

	utils.RespondWithJSON(w, http.StatusOK, lands)
}

// GetLand returns one listing.
func GetLand(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var land models.Land
	err := db.LandsCollection.FindOne(ctx, bson.M{"landId": ps.ByName("id")}).Decode(&land)
	if err == mongo.ErrNoDocuments {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Println("GetLand fetch error:", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, land)
}

// DeleteLand removes the requesting owner's listing.
func DeleteLand(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	userID := utils.GetUserIDFromRequest(r)
	res, err := db.LandsCollection.DeleteOne(ctx, bson.M{"landId": ps.ByName("id"), "ownerId": userID})
	if err != nil {
		log.Println("DeleteLand error:", err)
		http.Error(w, "Deletion failed", http.StatusInternalServerError)
		return
	}
	if res.DeletedCount == 0 {
		http.Error(w, "Listing not found", http.StatusNotFound)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
