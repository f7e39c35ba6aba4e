package routes

import (
	"net/http"

	"github.com/vitrinelabs/vitrine/internal/ui/render"
)

func registerAuth(mux *http.ServeMux, d Deps) {
	loginPage := func(w http.ResponseWriter, errMsg string) {
		render.Render(w, render.LoginVM{
			BaseVM: render.BaseVM{Title: "Entrar", Active: "login", ContentTmpl: "login.html", BaseURL: d.BaseURL},
			Error:  errMsg,
		})
	}

	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			loginPage(w, "")
		case http.MethodPost:
			_, token, err := d.Actors.Login(r.FormValue("email"), r.FormValue("password"))
			if err != nil {
				loginPage(w, "E-mail ou senha inválidos.")
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     d.cookieName(),
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			http.Redirect(w, r, "/", http.StatusSeeOther)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if _, err := d.Actors.Register(r.FormValue("email"), r.FormValue("password")); err != nil {
			loginPage(w, "Não foi possível criar a conta.")
			return
		}
		_, token, err := d.Actors.Login(r.FormValue("email"), r.FormValue("password"))
		if err != nil {
			loginPage(w, "Conta criada, faça login.")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     d.cookieName(),
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, "/", http.StatusSeeOther)
	})

	handleGet(mux, "/logout", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(d.cookieName()); err == nil {
			d.Actors.Logout(c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: d.cookieName(), Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
