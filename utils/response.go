package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the uniform envelope shared by every endpoint.
type JSONResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success writes a 200 envelope with data.
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Data: data})
}

// Created writes a 201 envelope with data.
func Created(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusCreated, JSONResponse{Success: true, Data: data})
}

// Message writes a 200 envelope carrying only a message.
func Message(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, JSONResponse{Success: true, Message: message})
}

// Error writes an error envelope with the given HTTP status.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, JSONResponse{Success: false, Message: message})
}

// ValidationError writes a 400 envelope with per-field messages.
func ValidationError(ctx *gin.Context, message string, fields map[string]string) {
	ctx.JSON(http.StatusBadRequest, JSONResponse{Success: false, Message: message, Errors: fields})
}
