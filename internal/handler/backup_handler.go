package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/daypulse/internal/db"
	"github.com/daypulse/internal/service"
	"github.com/gin-gonic/gin"
)

type backupPayload struct {
	Passphrase string `json:"passphrase"`
}

type restorePayload struct {
	Passphrase string `json:"passphrase"`
	// Payload 可选：缺省时从归档取回当前身份的最新备份
	Payload string `json:"payload"`
}

// CreateBackup 加密当前快照并归档
// 登录用户以自己的 UID 作为盐和归档键；未登录走公开回退盐（可被离线字典攻击）
// 上传失败只报告一次，不重试
func (a *API) CreateBackup(c *gin.Context) {
	var payload backupPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	sess, err := a.backupSession(payload.Passphrase, currentIdentity(c))
	if err != nil {
		if errors.Is(err, service.ErrPassphraseRequired) {
			respondError(c, http.StatusBadRequest, "请输入备份口令")
			return
		}
		respondError(c, http.StatusInternalServerError, "派生密钥失败")
		return
	}

	encrypted, err := a.backups.Export(sess, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "备份失败")
		return
	}

	response := gin.H{
		"identity_id": sess.IdentityID,
		"payload":     encrypted,
	}
	if lastBackup, ok, err := a.settings.Get(db.SettingKeyLastBackupAt); err == nil && ok {
		response["backed_up_at"] = lastBackup
	}

	c.JSON(http.StatusOK, response)
}

// FetchBackup 取回当前身份归档的加密负载，服务端不解密
func (a *API) FetchBackup(c *gin.Context) {
	identity := currentIdentity(c)
	if identity == "" {
		identity = service.PublicIdentityID
	}

	payload, err := a.backups.Fetch(identity)
	if err != nil {
		if errors.Is(err, service.ErrBackupNotFound) {
			respondError(c, http.StatusNotFound, "没有可用的备份")
			return
		}
		respondError(c, http.StatusInternalServerError, "获取备份失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"identity_id": identity, "payload": payload})
}

// RestoreBackup 全有或全无地恢复备份：
// 解密或解析失败都不会触碰现有数据
func (a *API) RestoreBackup(c *gin.Context) {
	var payload restorePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	sess, err := a.backupSession(payload.Passphrase, currentIdentity(c))
	if err != nil {
		if errors.Is(err, service.ErrPassphraseRequired) {
			respondError(c, http.StatusBadRequest, "请输入备份口令")
			return
		}
		respondError(c, http.StatusInternalServerError, "派生密钥失败")
		return
	}

	encrypted := payload.Payload
	if encrypted == "" {
		encrypted, err = a.backups.Fetch(sess.IdentityID)
		if err != nil {
			if errors.Is(err, service.ErrBackupNotFound) {
				respondError(c, http.StatusNotFound, "没有可用的备份")
				return
			}
			respondError(c, http.StatusInternalServerError, "获取备份失败")
			return
		}
	}

	if err := a.backups.Restore(sess, encrypted, time.Now()); err != nil {
		if errors.Is(err, service.ErrDecryptFailed) {
			respondError(c, http.StatusBadRequest, "口令错误或备份已损坏")
			return
		}
		respondError(c, http.StatusInternalServerError, "恢复失败")
		return
	}

	c.JSON(http.StatusOK, gin.H{"restored": true})
}
