// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"

	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"
	// RouteMenuAPI is the public menu read endpoint.
	RouteMenuAPI = "/menu-api"
	// RouteOrder is the public order submission endpoint.
	RouteOrder = "/order"
	// RouteRate is the public rating submission endpoint.
	RouteRate = "/rate"

	// RouteLanguages is the languages admin route.
	RouteLanguages = "/languages"
	// RouteMenuTypes is the menu types admin route.
	RouteMenuTypes = "/menu-types"
	// RouteCategories is the categories admin route.
	RouteCategories = "/categories"
	// RouteItems is the menu items admin route.
	RouteItems = "/items"
	// RouteOrders is the orders admin route.
	RouteOrders = "/orders"
	// RouteRatings is the ratings admin route.
	RouteRatings = "/ratings"
	// RouteEvents is the event log admin route.
	RouteEvents = "/events"
)

// Redirect target constants.
const (
	redirectLogin      = "/login"
	redirectAdmin      = "/admin"
	redirectLanguages  = "/admin/languages"
	redirectMenuTypes  = "/admin/menu-types"
	redirectCategories = "/admin/categories"
	redirectItems      = "/admin/items"
	redirectOrders     = "/admin/orders"
)

// defaultPerPage is the admin list page size.
const defaultPerPage = 25
