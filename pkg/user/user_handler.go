package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/eventpulse/eventpulse/internal/rest"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id        int       `json:"id"`
	Uid       string    `json:"uid"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type InsertUserDTO struct {
	Name  string `json:"name" validate:"required,max=255"`
	Email string `json:"email" validate:"required,email,max=255"`
}

type Handler struct {
	userService Service
}

func NewHandler(userService Service) *Handler {
	return &Handler{
		userService: userService,
	}
}

// GetUsers godoc
// @Summary List users
// @Description Retrieve all users ordered by creation time
// @Tags User
// @Produce json
// @Success 200 {array} UserDTO
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/users [get]
func (h *Handler) GetUsers(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting all users")

	users, err := h.userService.GetAllUsers(r.Context())
	if err != nil {
		log.Errorf("Error fetching users: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}

	usersDTO := make([]UserDTO, 0, len(users))
	for _, user := range users {
		usersDTO = append(usersDTO, userToDTO(user))
	}
	rest.WriteJSON(w, http.StatusOK, usersDTO)
}

// GetUser godoc
// @Summary Get a user
// @Tags User
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid user ID"
// @Failure 404 {object} rest.ErrorResponse "User not found"
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := rest.ParseId(mux.Vars(r)["id"])
	if err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}
	log.Tracef("Getting user %d", id)

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			rest.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Errorf("Error fetching user: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(user))
}

// CreateUser godoc
// @Summary Create a new user
// @Tags User
// @Accept json
// @Produce json
// @Param user body InsertUserDTO true "User"
// @Success 201 {object} object{message=string,user=UserDTO}
// @Failure 400 {object} rest.ErrorResponse "Invalid user data"
// @Failure 500 {object} rest.ErrorResponse
// @Router /api/users [post]
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	log.Debug("Creating user")

	var input InsertUserDTO
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		if details := rest.BodyFieldErrors(err); details != nil {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data", details...)
			return
		}
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format")
		return
	}
	if details := rest.Validate(input); details != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid user data", details...)
		return
	}

	created, err := h.userService.CreateUser(r.Context(), User{Name: input.Name, Email: input.Email})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			rest.WriteError(w, http.StatusBadRequest, "Invalid user data",
				rest.FieldError{Field: "email", Message: "is already registered"})
			return
		}
		log.Errorf("Error creating user: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	log.Tracef("Created user: %+v", created)

	rest.WriteMessage(w, http.StatusCreated, "User created successfully", "user", userToDTO(created))
}

func userToDTO(user User) UserDTO {
	return UserDTO{
		Id:        user.Id,
		Uid:       user.Uid,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

func DTOToUser(dto UserDTO) User {
	return User{
		Id:        dto.Id,
		Uid:       dto.Uid,
		Name:      dto.Name,
		Email:     dto.Email,
		CreatedAt: dto.CreatedAt,
	}
}
