package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/annel0/perlin-wireframe/internal/noise"
	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
)

// handleNoise возвращает noise3(x, y, z)
func (rs *RestServer) handleNoise(c *gin.Context) {
	x, y, z, err := queryPoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	writeValue(c, noise.Noise3(x, y, z))
}

// handleFBM возвращает fbm(x, y, z, octaves)
func (rs *RestServer) handleFBM(c *gin.Context) {
	x, y, z, err := queryPoint(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	octaves := rs.config.DefaultOctaves
	if raw, ok := c.GetQuery("octaves"); ok {
		octaves, err = strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := noise.ValidateOctaves(octaves); err != nil {
		badRequest(c, err)
		return
	}

	writeValue(c, noise.FBM(x, y, z, octaves))
}

// writeValue отдаёт значение поля. NaN и Inf в JSON не кодируются, поэтому
// при переполнении координат на высоких октавах отвечаем 422.
func writeValue(c *gin.Context, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		c.JSON(http.StatusUnprocessableEntity, GenericResponse{
			Success: false,
			Message: "значение не конечно: координаты вне допустимого диапазона",
		})
		return
	}
	c.JSON(http.StatusOK, ValueResponse{Value: v})
}

// handleFrame отдаёт последний кадр; gzip, если клиент его принимает
func (rs *RestServer) handleFrame(c *gin.Context) {
	if rs.config.Frames == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Кадров нет"})
		return
	}
	frame := rs.config.Frames.Last()
	if frame == nil {
		c.JSON(http.StatusNotFound, GenericResponse{Success: false, Message: "Кадров нет"})
		return
	}

	body, err := json.Marshal(frame)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: err.Error()})
		return
	}

	c.Header("Vary", "Accept-Encoding")
	if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		c.Data(http.StatusOK, "application/json", body)
		return
	}

	compressed, err := gzipBytes(body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{Success: false, Message: err.Error()})
		return
	}
	c.Header("Content-Encoding", "gzip")
	c.Data(http.StatusOK, "application/json", compressed)
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
