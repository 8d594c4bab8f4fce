package controllers

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/middleware"
	"github.com/kendall-kelly/ppe-pickup-api/models"
	"github.com/kendall-kelly/ppe-pickup-api/services"
	"github.com/kendall-kelly/ppe-pickup-api/utils"
	"gorm.io/gorm"
)

// ItemsPerPage is the listing page size
const ItemsPerPage = 8

var itemSorts = map[string]string{
	"":           "id DESC",
	"price_asc":  "price ASC, id ASC",
	"price_desc": "price DESC, id ASC",
	"name":       "name ASC, id ASC",
}

// itemFilters are the listing query parameters
type itemFilters struct {
	Query   string
	InStock bool
	Sort    string
}

func parseItemFilters(c *gin.Context) itemFilters {
	f := itemFilters{
		Query:   strings.TrimSpace(c.Query("q")),
		InStock: c.Query("in_stock") == "1",
		Sort:    c.Query("sort"),
	}
	if _, ok := itemSorts[f.Sort]; !ok {
		f.Sort = ""
	}
	return f
}

// likeEscaper makes LIKE wildcards in a search term match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func (f itemFilters) apply(db *gorm.DB) *gorm.DB {
	if f.Query != "" {
		db = db.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(strings.ToLower(f.Query))+"%")
	}
	if f.InStock {
		db = db.Where("stock > 0")
	}
	return db
}

func (f itemFilters) pageURL(page int) string {
	v := url.Values{}
	if f.Query != "" {
		v.Set("q", f.Query)
	}
	if f.InStock {
		v.Set("in_stock", "1")
	}
	if f.Sort != "" {
		v.Set("sort", f.Sort)
	}
	v.Set("page", strconv.Itoa(page))
	return "/items?" + v.Encode()
}

// itemCard is an item with a browser-loadable image
type itemCard struct {
	models.Item
	ImageSrc string
}

// CatalogController serves the item listing
type CatalogController struct {
	db       *gorm.DB
	images   services.ImageService
	flashes  *middleware.FlashStore
	currency string
}

// NewCatalogController creates a catalog controller
func NewCatalogController(db *gorm.DB, images services.ImageService, flashes *middleware.FlashStore, currency string) *CatalogController {
	return &CatalogController{db: db, images: images, flashes: flashes, currency: strings.ToUpper(currency)}
}

// ListItems handles GET / and GET /items
func (cc *CatalogController) ListItems(c *gin.Context) {
	ctx := c.Request.Context()
	f := parseItemFilters(c)

	var total int64
	if err := f.apply(cc.db.WithContext(ctx).Model(&models.Item{})).Count(&total).Error; err != nil {
		slog.Error("Failed to count items", "error", err)
		renderServerError(c, cc.flashes)
		return
	}

	page := utils.Page{
		Number:     utils.ParsePage(c.Query("page")),
		Size:       ItemsPerPage,
		TotalItems: total,
	}.Clamp()

	var items []models.Item
	err := f.apply(cc.db.WithContext(ctx)).
		Order(itemSorts[f.Sort]).
		Limit(page.Size).
		Offset(page.Offset()).
		Find(&items).Error
	if err != nil {
		slog.Error("Failed to list items", "error", err)
		renderServerError(c, cc.flashes)
		return
	}

	cards := make([]itemCard, 0, len(items))
	for _, item := range items {
		card := itemCard{Item: item}
		if cc.images != nil {
			card.ImageSrc = cc.images.ImageURL(ctx, item.ImageURL)
		}
		cards = append(cards, card)
	}

	data := basePage(c, cc.flashes, "")
	data["Items"] = cards
	data["Query"] = f.Query
	data["InStock"] = f.InStock
	data["Sort"] = f.Sort
	data["Page"] = page
	data["PrevURL"] = f.pageURL(page.Prev())
	data["NextURL"] = f.pageURL(page.Next())
	data["Currency"] = cc.currency

	c.HTML(http.StatusOK, "index.html", data)
}
